package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry ejecuta fn hasta attempts veces, duplicando la espera entre intentos.
// Solo se usa para esperar dependencias al arrancar; las consultas nunca se reintentan.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			// espera antes del siguiente intento
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay *= 2
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
