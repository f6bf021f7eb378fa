package users

import (
	"fmt"
	"sync"
)

type demoAccount struct {
	username    string
	password    string
	role        RoleType
	displayName string
}

// The demo identity set shown on the login page.
var demoAccounts = []demoAccount{
	{username: "admin", password: "admin123", role: RoleAdmin, displayName: "System Administrator"},
	{username: "agent", password: "agent123", role: RoleAgent, displayName: "Collection Agent"},
	{username: "manager", password: "manager123", role: RoleManager, displayName: "Branch Manager"},
}

// DemoHint is a username/password pair displayed on the login page in demo mode
type DemoHint struct {
	Label    string
	Username string
	Password string
}

var demoIdentities = sync.OnceValues(func() ([]Identity, error) {
	identities := make([]Identity, 0, len(demoAccounts))
	for _, a := range demoAccounts {
		hash, err := HashPassword(a.password)
		if err != nil {
			return nil, fmt.Errorf("hashing demo password for %s: %w", a.username, err)
		}
		identities = append(identities, Identity{
			ID:           a.username + "_id",
			Username:     a.username,
			PasswordHash: hash,
			DisplayName:  a.displayName,
			Role:         a.role,
		})
	}
	return identities, nil
})

// DemoIdentities returns the fixed demo identity set. Passwords are hashed once per process.
func DemoIdentities() ([]Identity, error) {
	identities, err := demoIdentities()
	if err != nil {
		return nil, err
	}
	out := make([]Identity, len(identities))
	copy(out, identities)
	return out, nil
}

func DemoHints() []DemoHint {
	hints := make([]DemoHint, 0, len(demoAccounts))
	for _, a := range demoAccounts {
		hints = append(hints, DemoHint{Label: a.displayName, Username: a.username, Password: a.password})
	}
	return hints
}
