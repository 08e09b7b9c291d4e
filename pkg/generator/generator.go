package generator

import (
	"context"
	"crypto/rand"
	"math/big"
)

const (
	alphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	requestIDSize = 16
)

type ctxKey struct{}

// RandomID returns length characters drawn from crypto/rand.
func RandomID(length int) (string, error) {
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		result[i] = alphabet[randomIndex.Int64()]
	}

	return string(result), nil
}

// RequestID correlates one console request with the backend calls it makes.
func RequestID() (string, error) {
	return RandomID(requestIDSize)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
