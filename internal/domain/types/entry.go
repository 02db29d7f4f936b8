package types

import "fmt"

// Entry is one credential record returned by the password manager. It is
// only ever held in memory for the lifetime of a single invocation.
type Entry struct {
	Name     string `json:"name" yaml:"name"`
	Login    string `json:"login" yaml:"login"`
	Password string `json:"password" yaml:"password"`
	UUID     string `json:"uuid" yaml:"uuid"`
}

// String renders the entry without its password.
func (e Entry) String() string {
	return fmt.Sprintf("%s - %s - %s", e.Name, e.Login, e.UUID)
}
