// pkg/transaction/validator.go
package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Validator performs local sanity checks on a signed transaction before it
// is handed to the node.
type Validator struct {
	logger *zap.Logger
}

func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger.Named("tx-validator")}
}

// ValidateTransaction rejects transactions that the node would bounce
// anyway: no signatures, a zero blockhash, or an empty instruction list.
func (v *Validator) ValidateTransaction(tx *solana.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: transaction is nil", ErrInvalidInstruction)
	}

	if len(tx.Signatures) == 0 {
		v.logger.Debug("Validation failed: no signatures")
		return ErrInvalidSignature
	}
	for i, sig := range tx.Signatures {
		if sig.IsZero() {
			v.logger.Debug("Validation failed: zero signature", zap.Int("index", i))
			return fmt.Errorf("%w: signature %d is zero", ErrInvalidSignature, i)
		}
	}

	if tx.Message.RecentBlockhash.IsZero() {
		v.logger.Debug("Validation failed: zero blockhash")
		return ErrInvalidBlockhash
	}

	if len(tx.Message.Instructions) == 0 {
		v.logger.Debug("Validation failed: no instructions")
		return fmt.Errorf("%w: transaction has no instructions", ErrInvalidInstruction)
	}

	return nil
}
