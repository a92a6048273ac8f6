// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateConnection validates a Connection according to domain rules.
//
// Validation rules:
//   - FullName must not be empty
//   - An identity key must be derivable (profile URL or name)
//   - ConnectedOn must not be in the future
//
// NOT validated (optional in exports):
//   - Company, Position, Email
//   - ConnectedOn may be zero when the export omits it
func ValidateConnection(conn *Connection) error {
	if conn == nil {
		return fmt.Errorf("%w: connection is nil", ErrInvalidConnection)
	}

	if strings.TrimSpace(conn.FullName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrEmptyName)
	}

	if conn.IdentityKey() == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrMissingIdentity)
	}

	if !IsValidTimestamp(conn.ConnectedOn) {
		return fmt.Errorf("%w: %w", ErrInvalidConnection, ErrInvalidTimestamp)
	}

	return nil
}

// ValidatePerson validates a Person node before it is written.
func ValidatePerson(person *Person) error {
	if person == nil {
		return fmt.Errorf("%w: person is nil", ErrInvalidPerson)
	}

	if strings.TrimSpace(person.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPerson, ErrEmptyName)
	}

	if person.Id == 0 {
		return fmt.Errorf("%w: id is zero", ErrInvalidPerson)
	}

	if !IsValidTimestamp(person.ConnectedOn) {
		return fmt.Errorf("%w: %w", ErrInvalidPerson, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
