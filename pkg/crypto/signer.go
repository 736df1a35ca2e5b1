package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	signature := mac.Sum(nil)
	return hex.EncodeToString(signature)
}

func (s *Signer) Verify(data []byte, signature string) (bool, error) {
	expectedSignature := s.Sign(data)

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		s.logger.Warn("Signature verification failed")
		return false, fmt.Errorf("invalid signature")
	}

	return true, nil
}

// SignOperation signs a mutating ledger request: account, amount at cent
// precision, and the client timestamp.
func (s *Signer) SignOperation(accountID string, amount decimal.Decimal, timestamp int64) string {
	data := fmt.Sprintf("%s:%s:%d", accountID, amount.StringFixed(2), timestamp)
	return s.Sign([]byte(data))
}

func (s *Signer) VerifyOperation(accountID string, amount decimal.Decimal, timestamp int64, signature string) (bool, error) {
	data := fmt.Sprintf("%s:%s:%d", accountID, amount.StringFixed(2), timestamp)
	return s.Verify([]byte(data), signature)
}
