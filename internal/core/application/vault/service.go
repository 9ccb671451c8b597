package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/custody-daemon/internal/core/domain"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
)

// Service manages one (state, vault) pair per owner. The state account lives
// at ("state", owner) and records the bumps of both addresses, the vault at
// ("vault", state) holds the lamports and can only be debited with its
// derivation proof.
type Service struct {
	repoManager ports.RepoManager
	ledger      ports.Ledger
	pubsub      *pubsub.Service
	deriver     domain.Deriver
}

func NewService(
	repoManager ports.RepoManager, ledger ports.Ledger,
	pubsubSvc *pubsub.Service, programID solana.PublicKey,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if programID.IsZero() {
		return nil, fmt.Errorf("missing vault program id")
	}
	return &Service{
		repoManager, ledger, pubsubSvc, domain.NewDeriver(programID),
	}, nil
}

// Initialize creates the vault of owner and funds it with the reserve
// minimum, paid by owner along with the reserve of the state account.
func (s *Service) Initialize(
	ctx context.Context, owner solana.PublicKey,
) (*VaultInfo, error) {
	state, vault, err := s.deriveAddresses(owner)
	if err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			_, err := s.repoManager.AccountRepository().GetAccount(
				ctx, state.Address,
			)
			if err == nil {
				return nil, domain.ErrVaultAlreadyInitialized
			}
			if !errors.Is(err, domain.ErrAccountNotFound) {
				return nil, err
			}

			vaultState := domain.NewVaultState(owner, state.Bump, vault.Bump)
			proof := state.Proof()
			if err := s.ledger.CreateAccount(ctx, ports.CreateAccountArgs{
				Payer:   domain.SignedBy(owner),
				Address: state.Address,
				Owner:   s.deriver.ProgramID,
				Data:    vaultState.Encode(),
				Proof:   &proof,
			}); err != nil {
				return nil, err
			}

			if err := s.ledger.Transfer(ctx, ports.TransferArgs{
				Asset:     domain.NativeAsset,
				From:      owner,
				To:        vault.Address,
				Authority: domain.SignedBy(owner),
				Amount:    s.reserve(),
			}); err != nil {
				return nil, err
			}

			return s.vaultInfo(ctx, vaultState, state.Address, vault.Address)
		},
	)
	if err != nil {
		return nil, err
	}

	info := res.(*VaultInfo)
	log.Infof("vault: initialized %s for owner %s", info.Address, owner)

	s.pubsub.Go(func() {
		if err := s.pubsub.PublishVaultInitializedEvent(
			info.vaultState(), info.State, info.Address, info.Balance,
		); err != nil {
			log.WithError(err).Warn("pubsub: failed to publish vault initialized event")
		}
	})
	return info, nil
}

// Deposit moves amount lamports from owner to its vault.
func (s *Service) Deposit(
	ctx context.Context, owner solana.PublicKey, amount uint64,
) (*VaultInfo, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}

	state, err := s.deriver.Find(domain.StateNamespace, owner.Bytes())
	if err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			vaultState, err := s.getVaultState(ctx, state.Address)
			if err != nil {
				return nil, err
			}
			vault, err := vaultState.VaultAddress(s.deriver)
			if err != nil {
				return nil, err
			}
			if err := vaultState.RecordDeposit(amount); err != nil {
				return nil, err
			}

			if err := s.ledger.Transfer(ctx, ports.TransferArgs{
				Asset:     domain.NativeAsset,
				From:      owner,
				To:        vault.Address,
				Authority: domain.SignedBy(owner),
				Amount:    amount,
			}); err != nil {
				return nil, err
			}

			if err := s.updateVaultState(ctx, state.Address, vaultState); err != nil {
				return nil, err
			}

			return s.vaultInfo(ctx, vaultState, state.Address, vault.Address)
		},
	)
	if err != nil {
		return nil, err
	}

	info := res.(*VaultInfo)
	log.Debugf("vault: deposited %d into %s", amount, info.Address)

	s.pubsub.Go(func() {
		if err := s.pubsub.PublishVaultDepositEvent(
			info.vaultState(), info.State, info.Address, amount, info.Balance,
		); err != nil {
			log.WithError(err).Warn("pubsub: failed to publish vault deposit event")
		}
	})
	return info, nil
}

// Withdraw moves amount lamports from the vault of owner back to owner. The
// caller must be the recorded owner and the vault can't drop below its
// reserve minimum.
func (s *Service) Withdraw(
	ctx context.Context, caller, owner solana.PublicKey, amount uint64,
) (*VaultInfo, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}

	state, err := s.deriver.Find(domain.StateNamespace, owner.Bytes())
	if err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			vaultState, err := s.getVaultState(ctx, state.Address)
			if err != nil {
				return nil, err
			}
			vault, err := vaultState.VaultAddress(s.deriver)
			if err != nil {
				return nil, err
			}
			if err := vaultState.Authorize(caller); err != nil {
				return nil, err
			}

			balance, err := s.ledger.Balance(ctx, vault.Address)
			if err != nil {
				return nil, err
			}
			if amount > balance {
				return nil, fmt.Errorf(
					"%w: vault balance %d, requested %d",
					domain.ErrInsufficientBalance, balance, amount,
				)
			}
			if reserve := s.reserve(); balance-amount < reserve {
				return nil, fmt.Errorf(
					"%w: withdrawable %d, requested %d",
					domain.ErrReserveViolation, balance-reserve, amount,
				)
			}

			if err := s.ledger.Transfer(ctx, ports.TransferArgs{
				Asset:     domain.NativeAsset,
				From:      vault.Address,
				To:        vaultState.Owner,
				Authority: domain.ProvenBy(vault.Proof()),
				Amount:    amount,
			}); err != nil {
				return nil, err
			}

			return s.vaultInfo(ctx, vaultState, state.Address, vault.Address)
		},
	)
	if err != nil {
		return nil, err
	}

	info := res.(*VaultInfo)
	log.Debugf("vault: withdrawn %d from %s", amount, info.Address)

	s.pubsub.Go(func() {
		if err := s.pubsub.PublishVaultWithdrawEvent(
			info.vaultState(), info.State, info.Address, amount, info.Balance,
		); err != nil {
			log.WithError(err).Warn("pubsub: failed to publish vault withdraw event")
		}
	})
	return info, nil
}

// GetVault returns the vault of owner.
func (s *Service) GetVault(
	ctx context.Context, owner solana.PublicKey,
) (*VaultInfo, error) {
	state, err := s.deriver.Find(domain.StateNamespace, owner.Bytes())
	if err != nil {
		return nil, err
	}

	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			vaultState, err := s.getVaultState(ctx, state.Address)
			if err != nil {
				return nil, err
			}
			vault, err := vaultState.VaultAddress(s.deriver)
			if err != nil {
				return nil, err
			}
			return s.vaultInfo(ctx, vaultState, state.Address, vault.Address)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*VaultInfo), nil
}

func (s *Service) deriveAddresses(
	owner solana.PublicKey,
) (state, vault *domain.DerivedAddress, err error) {
	state, err = s.deriver.Find(domain.StateNamespace, owner.Bytes())
	if err != nil {
		return
	}
	vault, err = s.deriver.Find(domain.VaultNamespace, state.Address.Bytes())
	return
}

func (s *Service) reserve() uint64 {
	return s.ledger.MinimumBalance(0)
}

func (s *Service) getVaultState(
	ctx context.Context, address solana.PublicKey,
) (*domain.VaultState, error) {
	account, err := s.repoManager.AccountRepository().GetAccount(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrVaultNotFound
		}
		return nil, err
	}
	if !account.IsOwnedBy(s.deriver.ProgramID) {
		return nil, domain.ErrInvalidAccountOwner
	}
	return domain.DecodeVaultState(account.Data)
}

func (s *Service) updateVaultState(
	ctx context.Context, address solana.PublicKey, vaultState *domain.VaultState,
) error {
	return s.repoManager.AccountRepository().UpdateAccount(
		ctx, address, func(a *domain.Account) (*domain.Account, error) {
			a.Data = vaultState.Encode()
			return a, nil
		},
	)
}

func (s *Service) vaultInfo(
	ctx context.Context, vaultState *domain.VaultState,
	stateAddress, vaultAddress solana.PublicKey,
) (*VaultInfo, error) {
	balance, err := s.ledger.Balance(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	return &VaultInfo{
		Owner:         vaultState.Owner,
		State:         stateAddress,
		Address:       vaultAddress,
		StateBump:     vaultState.StateBump,
		VaultBump:     vaultState.VaultBump,
		TotalDeposits: vaultState.TotalDeposits,
		Balance:       balance,
		Reserve:       s.reserve(),
	}, nil
}
