// Package apperrors defines the typed failures reported to clients.
//
// Every rule violation is returned as an *Error carrying a machine-readable
// Code and the human-readable Message sent back in the response.
package apperrors

import "errors"

// Code identifies a failure kind
type Code string

const (
	// Account Directory
	DuplicateUsername  Code = "DUPLICATE_USERNAME"
	UsernameTooShort   Code = "USERNAME_TOO_SHORT"
	PasswordTooShort   Code = "PASSWORD_TOO_SHORT"
	InvalidCredentials Code = "INVALID_CREDENTIALS"
	InvalidSession     Code = "INVALID_SESSION"

	// Character & Inventory Store
	CharacterLimitReached Code = "CHARACTER_LIMIT_REACHED"
	CharacterNotFound     Code = "CHARACTER_NOT_FOUND"
	CharacterInUse        Code = "CHARACTER_IN_USE"
	InvalidCharacterName  Code = "INVALID_CHARACTER_NAME"
	InvalidClass          Code = "INVALID_CLASS"
	EmptySlot             Code = "EMPTY_SLOT"
	NotConsumable         Code = "NOT_CONSUMABLE"
	NotEquippable         Code = "NOT_EQUIPPABLE"
	InventoryFull         Code = "INVENTORY_FULL"
	NothingEquipped       Code = "NOTHING_EQUIPPED"
	InvalidEquipmentSlot  Code = "INVALID_EQUIPMENT_SLOT"
	NoActiveCharacter     Code = "NO_ACTIVE_CHARACTER"

	// Combat Resolution Engine
	InvalidAbilityIndex Code = "INVALID_ABILITY_INDEX"
	AbilityOnCooldown   Code = "ABILITY_ON_COOLDOWN"
	InsufficientMana    Code = "INSUFFICIENT_MANA"
	TargetOutOfRange    Code = "TARGET_OUT_OF_RANGE"
	TargetDead          Code = "TARGET_DEAD"
	CasterDead          Code = "CASTER_DEAD"

	Internal Code = "INTERNAL"
)

// Error is a typed, recoverable failure
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with a code and client-facing message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an error that keeps an underlying cause for logs
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code carried by err, or Internal for foreign errors
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// MessageOf returns the client-facing message for err. Errors that are not
// *Error never leak their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
