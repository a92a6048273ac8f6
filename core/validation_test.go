package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateConnection(t *testing.T) {
	validTime := Day(time.Now().Add(-48 * time.Hour))
	futureTime := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name    string
		conn    *Connection
		wantErr error
	}{
		{
			name:    "valid connection",
			conn:    &Connection{FullName: "Jane Doe", Company: "Acme", ConnectedOn: validTime},
			wantErr: nil,
		},
		{
			name:    "valid connection without date",
			conn:    &Connection{FullName: "Jane Doe"},
			wantErr: nil,
		},
		{
			name:    "nil connection",
			conn:    nil,
			wantErr: ErrInvalidConnection,
		},
		{
			name:    "blank name",
			conn:    &Connection{FullName: "  ", ProfileURL: "https://www.linkedin.com/in/x"},
			wantErr: ErrEmptyName,
		},
		{
			name:    "future date",
			conn:    &Connection{FullName: "Jane Doe", ConnectedOn: futureTime},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConnection(tt.conn)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConnection() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConnection() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePerson(t *testing.T) {
	tests := []struct {
		name    string
		person  *Person
		wantErr error
	}{
		{
			name:    "valid person",
			person:  &Person{Id: 7, Name: "Jane Doe"},
			wantErr: nil,
		},
		{
			name:    "nil person",
			person:  nil,
			wantErr: ErrInvalidPerson,
		},
		{
			name:    "zero id",
			person:  &Person{Name: "Jane Doe"},
			wantErr: ErrInvalidPerson,
		},
		{
			name:    "empty name",
			person:  &Person{Id: 7},
			wantErr: ErrEmptyName,
		},
		{
			name:    "future connection date",
			person:  &Person{Id: 7, Name: "Jane Doe", ConnectedOn: time.Now().Add(time.Hour)},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePerson(tt.person)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePerson() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePerson() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Time{}) {
		t.Errorf("zero time should be valid")
	}
	if IsValidTimestamp(time.Now().Add(time.Minute)) {
		t.Errorf("future time should be invalid")
	}
}

func TestParseConnectedOn(t *testing.T) {
	want := time.Date(2021, 7, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"export format", "04 Jul 2021", want, false},
		{"unpadded day", "4 Jul 2021", want, false},
		{"iso date", "2021-07-04", want, false},
		{"us date", "07/04/2021", want, false},
		{"surrounding whitespace", "  04 Jul 2021 ", want, false},
		{"empty", "", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConnectedOn(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("ParseConnectedOn() error = %v, want ErrInvalidDate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConnectedOn() unexpected error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseConnectedOn() = %v, want %v", got, tt.want)
			}
		})
	}
}
