package payment

import (
	"github.com/gagliardetto/solana-go"

	"github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/schema"
)

// DeriveAccount finds the program-derived address of the payment account
// for seed, together with its bump seed.
func DeriveAccount(seed string, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	if len(seed) > solana.MaxSeedLength {
		return solana.PublicKey{}, 0, errors.New(errors.PhaseValidate, errors.KindOverflow).
			Path(schema.Payment().Name(), schema.FieldSeed).
			Value(len(seed)).
			Detail("seed is %d bytes, at most %d allowed", len(seed), solana.MaxSeedLength).
			Cause(solana.ErrMaxSeedLengthExceeded).
			Build()
	}
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(seed)}, programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrap(errors.PhaseValidate, errors.KindInvalidInput, err, "find program address")
	}
	return addr, bump, nil
}

// ValidateWallets checks that both wallets are base58 public keys. Encoding
// does not require this; the program compares them against account keys.
func (p Payload) ValidateWallets() error {
	if _, err := parseWallet(schema.FieldShopWallet, p.ShopWallet); err != nil {
		return err
	}
	if _, err := parseWallet(schema.FieldHexWallet, p.HexWallet); err != nil {
		return err
	}
	return nil
}

// CheckAccounts reports whether the given accounts are the ones recorded in p.
func (p Payload) CheckAccounts(shop, hex solana.PublicKey) error {
	if shop.String() != p.ShopWallet {
		return errors.InvalidData(errors.PhaseValidate, []string{schema.Payment().Name(), schema.FieldShopWallet}, "shop wallet is invalid")
	}
	if hex.String() != p.HexWallet {
		return errors.InvalidData(errors.PhaseValidate, []string{schema.Payment().Name(), schema.FieldHexWallet}, "hex wallet is invalid")
	}
	return nil
}

func parseWallet(field, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Path(schema.Payment().Name(), field).
			Value(value).
			Detail("not a base58 public key").
			Cause(err).
			Build()
	}
	return key, nil
}
