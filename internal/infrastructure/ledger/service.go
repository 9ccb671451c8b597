package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

// service is the in-process ledger: it plays the execution environment and
// the asset custody service on top of the account registry. It never opens
// transactions on its own, every method must be called with the context of
// the caller's transaction.
type service struct {
	repoManager ports.RepoManager
	rent        domain.Rent
}

// NewService returns a ledger backed by the account registry of the given
// repo manager.
func NewService(
	repoManager ports.RepoManager, rent domain.Rent,
) (ports.Ledger, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if rent.LamportsPerByteYear == 0 {
		return nil, fmt.Errorf("rent lamports per byte-year must be positive")
	}
	if rent.ExemptionThreshold.IsNegative() || rent.ExemptionThreshold.IsZero() {
		return nil, fmt.Errorf("rent exemption threshold must be positive")
	}
	return &service{repoManager, rent}, nil
}

func (s *service) MinimumBalance(space uint64) uint64 {
	return s.rent.MinimumBalance(space)
}

func (s *service) CreateAccount(
	ctx context.Context, args ports.CreateAccountArgs,
) error {
	if args.Proof != nil {
		if !args.Proof.ProgramID.Equals(args.Owner) {
			return domain.ErrAuthorityMismatch
		}
		if err := domain.ProvenBy(*args.Proof).Authorizes(args.Address); err != nil {
			return err
		}
	}

	accounts := s.accounts()
	if _, err := accounts.GetAccount(ctx, args.Address); err == nil {
		return domain.ErrAccountAlreadyExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}

	reserve := s.MinimumBalance(uint64(len(args.Data)))
	if err := s.debitPayer(ctx, args.Payer, reserve); err != nil {
		return err
	}

	return accounts.AddAccount(ctx, &domain.Account{
		Address:  args.Address,
		Owner:    args.Owner,
		Lamports: reserve,
		Data:     args.Data,
	})
}

func (s *service) CloseProgramAccount(
	ctx context.Context, address, program, destination solana.PublicKey,
) (uint64, error) {
	account, err := s.accounts().GetAccount(ctx, address)
	if err != nil {
		return 0, err
	}
	if !account.IsOwnedBy(program) {
		return 0, domain.ErrInvalidAccountOwner
	}

	return s.closeAccount(ctx, account, destination)
}

func (s *service) Transfer(ctx context.Context, args ports.TransferArgs) error {
	if args.Amount == 0 {
		return domain.ErrInvalidAmount
	}
	if args.Asset.Equals(domain.NativeAsset) {
		return s.transferLamports(ctx, args)
	}
	return s.transferTokens(ctx, args)
}

func (s *service) CloseAccount(
	ctx context.Context, args ports.CloseAccountArgs,
) (uint64, error) {
	account, err := s.accounts().GetAccount(ctx, args.Account)
	if err != nil {
		return 0, err
	}
	tokenAccount, err := account.TokenAccount()
	if err != nil {
		return 0, err
	}
	if err := args.Authority.Authorizes(tokenAccount.Authority); err != nil {
		return 0, err
	}
	if tokenAccount.Amount > 0 {
		return 0, domain.ErrAccountNotEmpty
	}

	return s.closeAccount(ctx, account, args.Destination)
}

func (s *service) OpenTokenAccount(
	ctx context.Context, args ports.OpenTokenAccountArgs,
) (solana.PublicKey, error) {
	if args.Mint.Equals(domain.NativeAsset) {
		return solana.PublicKey{}, domain.ErrUnsupportedAsset
	}
	address, err := domain.AssociatedTokenAddress(args.Owner, args.Mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	account, err := s.accounts().GetAccount(ctx, address)
	if err == nil {
		if !args.Idempotent {
			return solana.PublicKey{}, domain.ErrAccountAlreadyExists
		}
		tokenAccount, err := account.TokenAccount()
		if err != nil {
			return solana.PublicKey{}, err
		}
		if !tokenAccount.Mint.Equals(args.Mint) ||
			!tokenAccount.Authority.Equals(args.Owner) {
			return solana.PublicKey{}, domain.ErrAccountAlreadyExists
		}
		return address, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return solana.PublicKey{}, err
	}

	if err := s.openTokenAccount(
		ctx, &args.Payer, address, args.Mint, args.Owner,
	); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

func (s *service) Airdrop(
	ctx context.Context, address solana.PublicKey, lamports uint64,
) error {
	if lamports == 0 {
		return domain.ErrInvalidAmount
	}
	return s.creditLamports(ctx, address, lamports)
}

func (s *service) MintTo(
	ctx context.Context, mint, owner solana.PublicKey, amount uint64,
) (solana.PublicKey, error) {
	if amount == 0 {
		return solana.PublicKey{}, domain.ErrInvalidAmount
	}
	if mint.Equals(domain.NativeAsset) {
		return solana.PublicKey{}, domain.ErrUnsupportedAsset
	}

	address, err := domain.AssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}

	accounts := s.accounts()
	if _, err := accounts.GetAccount(ctx, address); err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return solana.PublicKey{}, err
		}
		if err := s.openTokenAccount(ctx, nil, address, mint, owner); err != nil {
			return solana.PublicKey{}, err
		}
	}

	if err := s.updateTokenAccount(
		ctx, address, mint, func(t *domain.TokenAccount) error {
			return t.Deposit(amount)
		},
	); err != nil {
		return solana.PublicKey{}, err
	}
	return address, nil
}

func (s *service) Balance(
	ctx context.Context, address solana.PublicKey,
) (uint64, error) {
	account, err := s.accounts().GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Lamports, nil
}

func (s *service) TokenBalance(
	ctx context.Context, owner, mint solana.PublicKey,
) (uint64, error) {
	if mint.Equals(domain.NativeAsset) {
		return s.Balance(ctx, owner)
	}

	address, err := domain.AssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, err
	}
	account, err := s.accounts().GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	tokenAccount, err := account.TokenAccount()
	if err != nil {
		return 0, err
	}
	return tokenAccount.Amount, nil
}

func (s *service) accounts() domain.AccountRepository {
	return s.repoManager.AccountRepository()
}

func (s *service) transferLamports(
	ctx context.Context, args ports.TransferArgs,
) error {
	accounts := s.accounts()
	from, err := accounts.GetAccount(ctx, args.From)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	// Lamports can't be moved out of a token account, whoever signs.
	if from != nil && !from.IsSystemOwned() {
		if from.IsOwnedBy(domain.TokenProgramID) {
			return fmt.Errorf(
				"%w: %s is a token account", domain.ErrUnsupportedAsset, args.From,
			)
		}
		return domain.ErrInvalidAccountOwner
	}

	if err := args.Authority.Authorizes(args.From); err != nil {
		return err
	}
	if from == nil {
		return fmt.Errorf(
			"%w: source account %s is empty",
			domain.ErrInsufficientBalance, args.From,
		)
	}

	if err := accounts.UpdateAccount(
		ctx, args.From, func(a *domain.Account) (*domain.Account, error) {
			if err := a.Debit(args.Amount); err != nil {
				return nil, err
			}
			return a, nil
		},
	); err != nil {
		return err
	}

	if err := s.creditLamports(ctx, args.To, args.Amount); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"from":   args.From.String(),
		"to":     args.To.String(),
		"amount": args.Amount,
	}).Debug("ledger: lamports transferred")
	return nil
}

func (s *service) transferTokens(
	ctx context.Context, args ports.TransferArgs,
) error {
	accounts := s.accounts()

	from, err := accounts.GetAccount(ctx, args.From)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf(
				"%w: source token account %s does not exist",
				domain.ErrInsufficientBalance, args.From,
			)
		}
		return err
	}
	fromTokenAccount, err := from.TokenAccount()
	if err != nil {
		return err
	}
	to, err := accounts.GetAccount(ctx, args.To)
	if err != nil {
		return err
	}
	toTokenAccount, err := to.TokenAccount()
	if err != nil {
		return err
	}

	if !fromTokenAccount.Mint.Equals(args.Asset) ||
		!toTokenAccount.Mint.Equals(args.Asset) {
		return domain.ErrAssetMismatch
	}
	if err := args.Authority.Authorizes(fromTokenAccount.Authority); err != nil {
		return err
	}

	if err := s.updateTokenAccount(
		ctx, args.From, args.Asset, func(t *domain.TokenAccount) error {
			return t.Withdraw(args.Amount)
		},
	); err != nil {
		return err
	}
	if err := s.updateTokenAccount(
		ctx, args.To, args.Asset, func(t *domain.TokenAccount) error {
			return t.Deposit(args.Amount)
		},
	); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"asset":  args.Asset.String(),
		"from":   args.From.String(),
		"to":     args.To.String(),
		"amount": args.Amount,
	}).Debug("ledger: tokens transferred")
	return nil
}

// openTokenAccount allocates a token account. A nil payer mints its reserve.
func (s *service) openTokenAccount(
	ctx context.Context, payer *domain.Authority,
	address, mint, authority solana.PublicKey,
) error {
	reserve := s.MinimumBalance(domain.TokenAccountSize)
	if payer != nil {
		if err := s.debitPayer(ctx, *payer, reserve); err != nil {
			return err
		}
	}

	return s.accounts().AddAccount(ctx, &domain.Account{
		Address:  address,
		Owner:    domain.TokenProgramID,
		Lamports: reserve,
		Data:     domain.NewTokenAccount(mint, authority).Encode(),
	})
}

func (s *service) updateTokenAccount(
	ctx context.Context, address, mint solana.PublicKey,
	updateFn func(t *domain.TokenAccount) error,
) error {
	return s.accounts().UpdateAccount(
		ctx, address, func(a *domain.Account) (*domain.Account, error) {
			tokenAccount, err := a.TokenAccount()
			if err != nil {
				return nil, err
			}
			if !tokenAccount.Mint.Equals(mint) {
				return nil, domain.ErrAssetMismatch
			}
			if err := updateFn(tokenAccount); err != nil {
				return nil, err
			}
			a.Data = tokenAccount.Encode()
			return a, nil
		},
	)
}

func (s *service) debitPayer(
	ctx context.Context, payer domain.Authority, lamports uint64,
) error {
	payerKey, err := payer.Key()
	if err != nil {
		return err
	}
	return s.Transfer(ctx, ports.TransferArgs{
		Asset:     domain.NativeAsset,
		From:      payerKey,
		To:        solana.PublicKey{},
		Authority: payer,
		Amount:    lamports,
	})
}

func (s *service) creditLamports(
	ctx context.Context, address solana.PublicKey, lamports uint64,
) error {
	if address.IsZero() {
		return nil
	}

	accounts := s.accounts()
	err := accounts.UpdateAccount(
		ctx, address, func(a *domain.Account) (*domain.Account, error) {
			if err := a.Credit(lamports); err != nil {
				return nil, err
			}
			return a, nil
		},
	)
	if err == nil || !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}

	account := domain.NewSystemAccount(address)
	account.Lamports = lamports
	return accounts.AddAccount(ctx, account)
}

func (s *service) closeAccount(
	ctx context.Context, account *domain.Account, destination solana.PublicKey,
) (uint64, error) {
	if account.Address.Equals(destination) {
		return 0, fmt.Errorf("destination must differ from the closed account")
	}
	if err := s.accounts().DeleteAccount(ctx, account.Address); err != nil {
		return 0, err
	}
	if account.Lamports > 0 {
		if err := s.creditLamports(ctx, destination, account.Lamports); err != nil {
			return 0, err
		}
	}
	return account.Lamports, nil
}
