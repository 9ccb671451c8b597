package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

var ErrFaucetDisabled = errors.New("faucet is disabled")

// AccountInfo is the view of an entry of the account registry.
type AccountInfo struct {
	Address  solana.PublicKey `json:"address"`
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	DataLen  int              `json:"data_len"`
	Token    *TokenInfo       `json:"token,omitempty"`
}

type TokenInfo struct {
	Mint      solana.PublicKey `json:"mint"`
	Authority solana.PublicKey `json:"authority"`
	Amount    uint64           `json:"amount"`
}

// Service exposes the account registry and, if enabled, a faucet to fund
// wallets with lamports and tokens.
type Service struct {
	repoManager   ports.RepoManager
	ledger        ports.Ledger
	faucetEnabled bool
}

func NewService(
	repoManager ports.RepoManager, ledger ports.Ledger, faucetEnabled bool,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	return &Service{repoManager, ledger, faucetEnabled}, nil
}

func (s *Service) GetAccount(
	ctx context.Context, address solana.PublicKey,
) (*AccountInfo, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.repoManager.AccountRepository().GetAccount(ctx, address)
		},
	)
	if err != nil {
		return nil, err
	}

	account := res.(*domain.Account)
	info := &AccountInfo{
		Address:  account.Address,
		Owner:    account.Owner,
		Lamports: account.Lamports,
		DataLen:  len(account.Data),
	}
	if account.IsOwnedBy(domain.TokenProgramID) {
		if tokenAccount, err := account.TokenAccount(); err == nil {
			info.Token = &TokenInfo{
				Mint:      tokenAccount.Mint,
				Authority: tokenAccount.Authority,
				Amount:    tokenAccount.Amount,
			}
		}
	}
	return info, nil
}

func (s *Service) Balance(
	ctx context.Context, address solana.PublicKey,
) (uint64, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.ledger.Balance(ctx, address)
		},
	)
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}

func (s *Service) TokenBalance(
	ctx context.Context, owner, mint solana.PublicKey,
) (uint64, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			return s.ledger.TokenBalance(ctx, owner, mint)
		},
	)
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}

func (s *Service) Airdrop(
	ctx context.Context, address solana.PublicKey, lamports uint64,
) (uint64, error) {
	if !s.faucetEnabled {
		return 0, ErrFaucetDisabled
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.ledger.Airdrop(ctx, address, lamports); err != nil {
				return nil, err
			}
			return s.ledger.Balance(ctx, address)
		},
	)
	if err != nil {
		return 0, err
	}

	log.Debugf("faucet: airdropped %d lamports to %s", lamports, address)
	return res.(uint64), nil
}

// MintTo credits amount of mint to the associated token account of owner and
// returns its address.
func (s *Service) MintTo(
	ctx context.Context, mint, owner solana.PublicKey, amount uint64,
) (solana.PublicKey, error) {
	if !s.faucetEnabled {
		return solana.PublicKey{}, ErrFaucetDisabled
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			return s.ledger.MintTo(ctx, mint, owner, amount)
		},
	)
	if err != nil {
		return solana.PublicKey{}, err
	}

	log.Debugf("faucet: minted %d of %s to %s", amount, mint, owner)
	return res.(solana.PublicKey), nil
}
