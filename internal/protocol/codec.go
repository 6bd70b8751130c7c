package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownType is returned by Decode for unregistered message types
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the frame every message travels in
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var decoders = map[string]func(json.RawMessage) (Message, error){
	TypeLoginRequest:            decodeAs[LoginRequest],
	TypeLoginResponse:           decodeAs[LoginResponse],
	TypeRegisterRequest:         decodeAs[RegisterRequest],
	TypeRegisterResponse:        decodeAs[RegisterResponse],
	TypeLogoutRequest:           decodeAs[LogoutRequest],
	TypeLogoutResponse:          decodeAs[LogoutResponse],
	TypeCharacterListRequest:    decodeAs[CharacterListRequest],
	TypeCharacterListResponse:   decodeAs[CharacterListResponse],
	TypeCreateCharacterRequest:  decodeAs[CreateCharacterRequest],
	TypeCreateCharacterResponse: decodeAs[CreateCharacterResponse],
	TypeSelectCharacterRequest:  decodeAs[SelectCharacterRequest],
	TypeSelectCharacterResponse: decodeAs[SelectCharacterResponse],
	TypePlayerMove:              decodeAs[PlayerMove],
	TypeWorldUpdate:             decodeAs[WorldUpdate],
	TypeChatMessage:             decodeAs[ChatMessage],
	TypeUseAbilityRequest:       decodeAs[UseAbilityRequest],
	TypeAttackRequest:           decodeAs[AttackRequest],
	TypeUseAbilityResponse:      decodeAs[UseAbilityResponse],
	TypeCombatEvent:             decodeAs[CombatEvent],
	TypePlayerDeath:             decodeAs[PlayerDeath],
	TypePlayerRespawn:           decodeAs[PlayerRespawn],
	TypeUseItemRequest:          decodeAs[UseItemRequest],
	TypeUseItemResponse:         decodeAs[UseItemResponse],
	TypeEquipItemRequest:        decodeAs[EquipItemRequest],
	TypeEquipItemResponse:       decodeAs[EquipItemResponse],
	TypeUnequipItemRequest:      decodeAs[UnequipItemRequest],
	TypeUnequipItemResponse:     decodeAs[UnequipItemResponse],
}

func decodeAs[T Message](raw json.RawMessage) (Message, error) {
	var m T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Decode parses one envelope into its concrete message value
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	m, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return m, nil
}

// Encode wraps m in an envelope
func Encode(m Message) ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Type(), err)
	}
	return json.Marshal(Envelope{Type: m.Type(), Payload: payload})
}

// Types lists every registered message type name
func Types() []string {
	out := make([]string, 0, len(decoders))
	for t := range decoders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
