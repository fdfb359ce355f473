package payment

import (
	"github.com/gagliardetto/solana-go"
)

// NewCreatePaymentInstruction builds the instruction that creates the
// payment account. The account address is derived from the payload seed.
//
// Accounts: admin [signer, writable], payment account [writable],
// system program, rent sysvar.
func NewCreatePaymentInstruction(programID, admin solana.PublicKey, p Payload) (*solana.GenericInstruction, error) {
	p.InstructionData = uint8(InstructionCreatePayment)
	data, err := p.Encode()
	if err != nil {
		return nil, err
	}
	account, _, err := DeriveAccount(p.Seed, programID)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(admin).SIGNER().WRITE(),
		solana.Meta(account).WRITE(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}, data), nil
}

// TransferAccounts names the accounts of a transfer. For SPL transfers
// Hex and Shop are token accounts and SenderToken is required.
type TransferAccounts struct {
	Sender      solana.PublicKey
	Payment     solana.PublicKey
	Hex         solana.PublicKey
	Shop        solana.PublicKey
	SenderToken solana.PublicKey
}

// NewTransferInstruction builds a transfer instruction for currency.
func NewTransferInstruction(programID solana.PublicKey, currency Currency, accounts TransferAccounts) (*solana.GenericInstruction, error) {
	data, err := TransferInstruction(currency)
	if err != nil {
		return nil, err
	}

	var metas solana.AccountMetaSlice
	switch currency {
	case CurrencySpl:
		metas = solana.AccountMetaSlice{
			solana.Meta(accounts.Sender).SIGNER().WRITE(),
			solana.Meta(accounts.Payment).WRITE(),
			solana.Meta(accounts.SenderToken).WRITE(),
			solana.Meta(accounts.Hex).WRITE(),
			solana.Meta(accounts.Shop).WRITE(),
			solana.Meta(solana.TokenProgramID),
		}
	default:
		metas = solana.AccountMetaSlice{
			solana.Meta(accounts.Sender).SIGNER().WRITE(),
			solana.Meta(accounts.Payment).WRITE(),
			solana.Meta(accounts.Hex).WRITE(),
			solana.Meta(accounts.Shop).WRITE(),
			solana.Meta(solana.SystemProgramID),
		}
	}
	return solana.NewInstruction(programID, metas, data), nil
}
