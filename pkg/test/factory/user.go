package factory

import (
	"fmt"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"
)

// NewUser builds a T with random fields and a unique, well formed email unless one is given.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	hasEmail := false

	for _, data := range customData {
		if _, exists := data["Email"]; exists {
			hasEmail = true
			break
		}
	}

	if !hasEmail {
		customData = append(customData, map[string]any{
			"Email": fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		})
	}

	return instance.Build(customData...)
}
