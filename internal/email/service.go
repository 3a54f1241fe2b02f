package email

import (
	"context"
)

// Service sends transactional email. Delivery is best-effort; callers must
// not let a send failure roll back the state change that triggered it.
type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
}
