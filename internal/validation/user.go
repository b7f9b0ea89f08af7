package validation

import (
	"strings"

	"github.com/twinzy/goals/internal/model"
)

// User validates a user provisioning payload. Email format is left to the
// identity provider.
func User(payload map[string]any) (*model.NewUser, error) {
	verr := &Error{}

	user := &model.NewUser{
		UID:   requiredString(payload, "uid", verr),
		Name:  requiredString(payload, "name", verr),
		Email: requiredString(payload, "email", verr),
	}
	photoURL, _ := optionalString(payload, "photoURL", verr)
	user.PhotoURL = photoURL

	if err := verr.err(); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	return user, nil
}
