package escrow

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

// Service runs the escrow state machine. An escrow record lives at
// ("escrow", maker, seed) of the escrow program, the offered tokens at the
// associated token account of the escrow address. Take and refund close both
// accounts and leave a receipt behind.
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
		return nil, fmt.Errorf("missing escrow program id")
	}
	return &Service{
		repoManager, ledger, pubsubSvc, domain.NewDeriver(programID),
	}, nil
}

// Make opens an escrow offering args.AmountA of args.TokenA for
// args.AmountB of args.TokenB and moves the offered tokens from the maker's
// token account to the holding account. The maker pays the reserves of both
// accounts.
func (s *Service) Make(
	ctx context.Context, maker solana.PublicKey, args MakeArgs,
) (*EscrowInfo, error) {
	escrow, err := domain.NewEscrow(
		maker, args.TokenA, args.TokenB, args.Seed, args.AmountA, args.AmountB,
	)
	if err != nil {
		return nil, err
	}

	derived, err := s.deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(args.Seed),
	)
	if err != nil {
		return nil, err
	}
	escrow.Bump = derived.Bump
	escrow.Address = derived.Address

	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			_, err := s.repoManager.AccountRepository().GetAccount(
				ctx, escrow.Address,
			)
			if err == nil {
				return nil, domain.ErrEscrowAlreadyExists
			}
			if !errors.Is(err, domain.ErrAccountNotFound) {
				return nil, err
			}

			proof := derived.Proof()
			if err := s.ledger.CreateAccount(ctx, ports.CreateAccountArgs{
				Payer:   domain.SignedBy(maker),
				Address: escrow.Address,
				Owner:   s.deriver.ProgramID,
				Data:    escrow.Encode(),
				Proof:   &proof,
			}); err != nil {
				return nil, err
			}

			holding, err := s.ledger.OpenTokenAccount(ctx, ports.OpenTokenAccountArgs{
				Payer: domain.SignedBy(maker),
				Owner: escrow.Address,
				Mint:  escrow.TokenA,
			})
			if err != nil {
				return nil, err
			}

			makerAccount, err := domain.AssociatedTokenAddress(maker, escrow.TokenA)
			if err != nil {
				return nil, err
			}
			if err := s.ledger.Transfer(ctx, ports.TransferArgs{
				Asset:     escrow.TokenA,
				From:      makerAccount,
				To:        holding,
				Authority: domain.SignedBy(maker),
				Amount:    escrow.AmountA,
			}); err != nil {
				return nil, err
			}

			return newEscrowInfo(escrow, holding, escrow.AmountA, true), nil
		},
	)
	if err != nil {
		return nil, err
	}

	info := res.(*EscrowInfo)
	log.Infof("escrow: made %s by maker %s with seed %d", info.Address, maker, args.Seed)

	s.pubsub.Go(func() {
		if err := s.pubsub.PublishEscrowMadeEvent(escrow); err != nil {
			log.WithError(err).Warn("pubsub: failed to publish escrow made event")
		}
	})
	return info, nil
}

// Take swaps the escrow: amount_b of token_b go from taker to maker, then
// the holding account is drained to taker and closed along with the record.
// If the first transfer fails nothing changes and the escrow can be taken
// again.
func (s *Service) Take(
	ctx context.Context, taker, maker solana.PublicKey, seed uint64,
) (*domain.EscrowReceipt, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			escrow, proof, err := s.getOpenEscrow(ctx, maker, seed)
			if err != nil {
				return nil, err
			}

			// (1) counter value, signed by the taker.
			makerAccount, err := s.ledger.OpenTokenAccount(ctx, ports.OpenTokenAccountArgs{
				Payer:      domain.SignedBy(taker),
				Owner:      escrow.Maker,
				Mint:       escrow.TokenB,
				Idempotent: true,
			})
			if err != nil {
				return nil, err
			}
			takerAccount, err := domain.AssociatedTokenAddress(taker, escrow.TokenB)
			if err != nil {
				return nil, err
			}
			if err := s.ledger.Transfer(ctx, ports.TransferArgs{
				Asset:     escrow.TokenB,
				From:      takerAccount,
				To:        makerAccount,
				Authority: domain.SignedBy(taker),
				Amount:    escrow.AmountB,
			}); err != nil {
				return nil, err
			}

			// (2) offered tokens, under the escrow's authority.
			takerAccount, err = s.ledger.OpenTokenAccount(ctx, ports.OpenTokenAccountArgs{
				Payer:      domain.SignedBy(taker),
				Owner:      taker,
				Mint:       escrow.TokenA,
				Idempotent: true,
			})
			if err != nil {
				return nil, err
			}
			if err := s.release(ctx, escrow, proof, takerAccount); err != nil {
				return nil, err
			}

			// (3)
			return s.close(ctx, escrow, proof, domain.EscrowTaken, taker)
		},
	)
	if err != nil {
		return nil, err
	}

	receipt := res.(*domain.EscrowReceipt)
	log.Infof("escrow: %s taken by %s", receipt.Escrow, taker)

	s.pubsub.Go(func() {
		if err := s.pubsub.PublishEscrowClosedEvent(receipt); err != nil {
			log.WithError(err).Warn("pubsub: failed to publish escrow taken event")
		}
	})
	return receipt, nil
}

// Refund returns the offered tokens to the maker and closes the escrow. Only
// the maker can refund.
func (s *Service) Refund(
	ctx context.Context, caller, maker solana.PublicKey, seed uint64,
) (*domain.EscrowReceipt, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			escrow, proof, err := s.getOpenEscrow(ctx, maker, seed)
			if err != nil {
				return nil, err
			}
			if err := escrow.Authorize(caller); err != nil {
				return nil, err
			}

			makerAccount, err := s.ledger.OpenTokenAccount(ctx, ports.OpenTokenAccountArgs{
				Payer:      domain.SignedBy(escrow.Maker),
				Owner:      escrow.Maker,
				Mint:       escrow.TokenA,
				Idempotent: true,
			})
			if err != nil {
				return nil, err
			}
			if err := s.release(ctx, escrow, proof, makerAccount); err != nil {
				return nil, err
			}

			return s.close(ctx, escrow, proof, domain.EscrowRefunded, caller)
		},
	)
	if err != nil {
		return nil, err
	}

	receipt := res.(*domain.EscrowReceipt)
	log.Infof("escrow: %s refunded to %s", receipt.Escrow, maker)

	s.pubsub.Go(func() {
		if err := s.pubsub.PublishEscrowClosedEvent(receipt); err != nil {
			log.WithError(err).Warn("pubsub: failed to publish escrow refunded event")
		}
	})
	return receipt, nil
}

// GetEscrow returns the escrow of maker with the given seed. For a closed
// escrow the info comes from its most recent receipt.
func (s *Service) GetEscrow(
	ctx context.Context, maker solana.PublicKey, seed uint64,
) (*EscrowInfo, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			escrow, _, err := s.getOpenEscrow(ctx, maker, seed)
			if err == nil {
				return s.escrowInfo(ctx, escrow, true)
			}
			if !errors.Is(err, domain.ErrEscrowClosed) {
				return nil, err
			}

			receipts, err := s.getReceipts(ctx, maker, seed)
			if err != nil {
				return nil, err
			}
			return escrowInfoFromReceipt(receipts[0]), nil
		},
	)
	if err != nil {
		return nil, err
	}
	return res.(*EscrowInfo), nil
}

// ListEscrows returns the open escrows, optionally filtered by maker.
func (s *Service) ListEscrows(
	ctx context.Context, maker *solana.PublicKey,
) ([]*EscrowInfo, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			accounts, err := s.repoManager.AccountRepository().GetAccountsByOwner(
				ctx, s.deriver.ProgramID,
			)
			if err != nil {
				return nil, err
			}

			list := make([]*EscrowInfo, 0, len(accounts))
			for _, account := range accounts {
				escrow, err := domain.DecodeEscrow(account.Data)
				if err != nil {
					log.WithError(err).Warnf(
						"escrow: skipping malformed record %s", account.Address,
					)
					continue
				}
				if maker != nil && !escrow.Maker.Equals(*maker) {
					continue
				}
				escrow.Address = account.Address

				info, err := s.escrowInfo(ctx, escrow, false)
				if err != nil {
					return nil, err
				}
				list = append(list, info)
			}
			return list, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]*EscrowInfo), nil
}

// ListReceipts returns the receipts of closed escrows, most recent first,
// optionally filtered by maker.
func (s *Service) ListReceipts(
	ctx context.Context, maker *solana.PublicKey,
) ([]*domain.EscrowReceipt, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			if maker != nil {
				return s.repoManager.ReceiptRepository().GetReceiptsForMaker(ctx, *maker)
			}
			return s.repoManager.ReceiptRepository().GetAllReceipts(ctx)
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]*domain.EscrowReceipt), nil
}

// getOpenEscrow loads the escrow record of (maker, seed) and re-derives its
// authority from the persisted bump. A missing record with a receipt is a
// closed escrow.
func (s *Service) getOpenEscrow(
	ctx context.Context, maker solana.PublicKey, seed uint64,
) (*domain.Escrow, *domain.AuthorityProof, error) {
	derived, err := s.deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(seed),
	)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.repoManager.AccountRepository().GetAccount(
		ctx, derived.Address,
	)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, nil, err
		}
		receipts, err := s.repoManager.ReceiptRepository().GetReceiptsForEscrow(
			ctx, derived.Address,
		)
		if err != nil {
			return nil, nil, err
		}
		if len(receipts) > 0 {
			return nil, nil, domain.ErrEscrowClosed
		}
		return nil, nil, domain.ErrEscrowNotFound
	}
	if !account.IsOwnedBy(s.deriver.ProgramID) {
		return nil, nil, domain.ErrInvalidAccountOwner
	}

	escrow, err := domain.DecodeEscrow(account.Data)
	if err != nil {
		return nil, nil, err
	}
	escrow.Seed = seed
	escrow.Address = derived.Address

	rederived, err := escrow.DerivedAddress(s.deriver)
	if err != nil {
		return nil, nil, err
	}
	proof := rederived.Proof()
	return escrow, &proof, nil
}

func (s *Service) getReceipts(
	ctx context.Context, maker solana.PublicKey, seed uint64,
) ([]*domain.EscrowReceipt, error) {
	derived, err := s.deriver.Find(
		domain.EscrowNamespace, maker.Bytes(), domain.SeedBytes(seed),
	)
	if err != nil {
		return nil, err
	}
	receipts, err := s.repoManager.ReceiptRepository().GetReceiptsForEscrow(
		ctx, derived.Address,
	)
	if err != nil {
		return nil, err
	}
	if len(receipts) <= 0 {
		return nil, domain.ErrEscrowNotFound
	}
	return receipts, nil
}

// release moves the offered tokens from the holding account to recipient.
func (s *Service) release(
	ctx context.Context, escrow *domain.Escrow, proof *domain.AuthorityProof,
	recipient solana.PublicKey,
) error {
	holding, err := escrow.HoldingAddress()
	if err != nil {
		return err
	}
	return s.ledger.Transfer(ctx, ports.TransferArgs{
		Asset:     escrow.TokenA,
		From:      holding,
		To:        recipient,
		Authority: domain.ProvenBy(*proof),
		Amount:    escrow.AmountA,
	})
}

// close frees the holding account and the record, returning their reserves
// to the maker, and stores the receipt.
func (s *Service) close(
	ctx context.Context, escrow *domain.Escrow, proof *domain.AuthorityProof,
	status domain.EscrowStatus, counterparty solana.PublicKey,
) (*domain.EscrowReceipt, error) {
	holding, err := escrow.HoldingAddress()
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.CloseAccount(ctx, ports.CloseAccountArgs{
		Account:     holding,
		Destination: escrow.Maker,
		Authority:   domain.ProvenBy(*proof),
	}); err != nil {
		return nil, err
	}
	if _, err := s.ledger.CloseProgramAccount(
		ctx, escrow.Address, s.deriver.ProgramID, escrow.Maker,
	); err != nil {
		return nil, err
	}

	receipt := domain.NewEscrowReceipt(escrow, status, counterparty)
	if err := s.repoManager.ReceiptRepository().AddReceipt(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *Service) escrowInfo(
	ctx context.Context, escrow *domain.Escrow, withSeed bool,
) (*EscrowInfo, error) {
	holding, err := escrow.HoldingAddress()
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.TokenBalance(ctx, escrow.Address, escrow.TokenA)
	if err != nil {
		return nil, err
	}
	return newEscrowInfo(escrow, holding, balance, withSeed), nil
}
