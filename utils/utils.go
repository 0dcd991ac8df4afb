package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateResetToken generates a 6-digit password reset token
func GenerateResetToken() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	token := ""
	for i := 0; i < 6; i++ {
		token += fmt.Sprintf("%d", rng.Intn(10))
	}
	return token
}
