// Package protocol defines the message shapes exchanged with game clients
// and their JSON envelope.
package protocol

import "github.com/omega-realm/worldserver/internal/models"

// Message is any value that can travel in an envelope
type Message interface {
	Type() string
}

// Request is a client-to-server message the dispatcher routes
type Request interface {
	Message
	request()
}

// Message type names
const (
	TypeLoginRequest            = "login_request"
	TypeLoginResponse           = "login_response"
	TypeRegisterRequest         = "register_request"
	TypeRegisterResponse        = "register_response"
	TypeLogoutRequest           = "logout_request"
	TypeLogoutResponse          = "logout_response"
	TypeCharacterListRequest    = "character_list_request"
	TypeCharacterListResponse   = "character_list_response"
	TypeCreateCharacterRequest  = "create_character_request"
	TypeCreateCharacterResponse = "create_character_response"
	TypeSelectCharacterRequest  = "select_character_request"
	TypeSelectCharacterResponse = "select_character_response"
	TypePlayerMove              = "player_move"
	TypeWorldUpdate             = "world_update"
	TypeChatMessage             = "chat_message"
	TypeUseAbilityRequest       = "use_ability_request"
	TypeAttackRequest           = "attack_request"
	TypeUseAbilityResponse      = "use_ability_response"
	TypeCombatEvent             = "combat_event"
	TypePlayerDeath             = "player_death"
	TypePlayerRespawn           = "player_respawn"
	TypeUseItemRequest          = "use_item_request"
	TypeUseItemResponse         = "use_item_response"
	TypeEquipItemRequest        = "equip_item_request"
	TypeEquipItemResponse       = "equip_item_response"
	TypeUnequipItemRequest      = "unequip_item_request"
	TypeUnequipItemResponse     = "unequip_item_response"
)

// Account

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LogoutRequest struct {
	Token string `json:"token"`
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Characters

type CharacterListRequest struct {
	Token string `json:"token"`
}

type CharacterListResponse struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Characters []models.CharacterData `json:"characters"`
}

type CreateCharacterRequest struct {
	Token string                `json:"token"`
	Name  string                `json:"name"`
	Class models.CharacterClass `json:"character_class"`
}

type CreateCharacterResponse struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Character *models.CharacterData `json:"character,omitempty"`
}

type SelectCharacterRequest struct {
	Token       string `json:"token"`
	CharacterID int64  `json:"character_id"`
}

type SelectCharacterResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	PlayerData *models.PlayerData `json:"player_data,omitempty"`
}

// World

type PlayerMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerState is one entry of a world snapshot
type PlayerState struct {
	PlayerID  int64   `json:"player_id"`
	Name      string  `json:"name"`
	Level     int     `json:"level"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"max_health"`
}

type WorldUpdate struct {
	Players []PlayerState `json:"players"`
}

type ChatMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Combat

type UseAbilityRequest struct {
	AbilityIndex   int     `json:"ability_index"`
	TargetPlayerID int64   `json:"target_player_id"`
	TargetX        float64 `json:"target_x"`
	TargetY        float64 `json:"target_y"`
}

// AttackRequest is the short form of UseAbilityRequest
type AttackRequest struct {
	TargetPlayerID int64 `json:"target_player_id"`
	AbilityIndex   int   `json:"ability_index"`
}

type UseAbilityResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CurrentMana   int    `json:"current_mana"`
	CurrentHealth int    `json:"current_health"`
}

type CombatEvent struct {
	AttackerID        int64  `json:"attacker_id"`
	AttackerName      string `json:"attacker_name"`
	TargetID          int64  `json:"target_id"`
	TargetName        string `json:"target_name"`
	AbilityName       string `json:"ability_name"`
	Damage            int    `json:"damage"`
	Healing           int    `json:"healing"`
	IsCritical        bool   `json:"is_critical"`
	TargetHealthAfter int    `json:"target_health_after"`
	AttackerManaAfter int    `json:"attacker_mana_after"`
	Timestamp         int64  `json:"timestamp"`
}

type PlayerDeath struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`
	KillerID   int64  `json:"killer_id"`
	KillerName string `json:"killer_name"`
}

type PlayerRespawn struct {
	PlayerID int64   `json:"player_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Items

type UseItemRequest struct {
	SlotIndex int `json:"slot_index"`
}

type UseItemResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	HealthRestored int    `json:"health_restored"`
	ManaRestored   int    `json:"mana_restored"`
}

type EquipItemRequest struct {
	SlotIndex int `json:"slot_index"`
}

type EquipItemResponse struct {
	Success          bool                  `json:"success"`
	Message          string                `json:"message"`
	UpdatedCharacter *models.CharacterData `json:"updated_character,omitempty"`
}

type UnequipItemRequest struct {
	EquipmentSlot models.EquipmentSlot `json:"equipment_slot"`
}

type UnequipItemResponse struct {
	Success          bool                  `json:"success"`
	Message          string                `json:"message"`
	UpdatedCharacter *models.CharacterData `json:"updated_character,omitempty"`
}

func (LoginRequest) Type() string            { return TypeLoginRequest }
func (LoginResponse) Type() string           { return TypeLoginResponse }
func (RegisterRequest) Type() string         { return TypeRegisterRequest }
func (RegisterResponse) Type() string        { return TypeRegisterResponse }
func (LogoutRequest) Type() string           { return TypeLogoutRequest }
func (LogoutResponse) Type() string          { return TypeLogoutResponse }
func (CharacterListRequest) Type() string    { return TypeCharacterListRequest }
func (CharacterListResponse) Type() string   { return TypeCharacterListResponse }
func (CreateCharacterRequest) Type() string  { return TypeCreateCharacterRequest }
func (CreateCharacterResponse) Type() string { return TypeCreateCharacterResponse }
func (SelectCharacterRequest) Type() string  { return TypeSelectCharacterRequest }
func (SelectCharacterResponse) Type() string { return TypeSelectCharacterResponse }
func (PlayerMove) Type() string              { return TypePlayerMove }
func (WorldUpdate) Type() string             { return TypeWorldUpdate }
func (ChatMessage) Type() string             { return TypeChatMessage }
func (UseAbilityRequest) Type() string       { return TypeUseAbilityRequest }
func (AttackRequest) Type() string           { return TypeAttackRequest }
func (UseAbilityResponse) Type() string      { return TypeUseAbilityResponse }
func (CombatEvent) Type() string             { return TypeCombatEvent }
func (PlayerDeath) Type() string             { return TypePlayerDeath }
func (PlayerRespawn) Type() string           { return TypePlayerRespawn }
func (UseItemRequest) Type() string          { return TypeUseItemRequest }
func (UseItemResponse) Type() string         { return TypeUseItemResponse }
func (EquipItemRequest) Type() string        { return TypeEquipItemRequest }
func (EquipItemResponse) Type() string       { return TypeEquipItemResponse }
func (UnequipItemRequest) Type() string      { return TypeUnequipItemRequest }
func (UnequipItemResponse) Type() string     { return TypeUnequipItemResponse }

func (LoginRequest) request()           {}
func (RegisterRequest) request()        {}
func (LogoutRequest) request()          {}
func (CharacterListRequest) request()   {}
func (CreateCharacterRequest) request() {}
func (SelectCharacterRequest) request() {}
func (PlayerMove) request()             {}
func (ChatMessage) request()            {}
func (UseAbilityRequest) request()      {}
func (AttackRequest) request()          {}
func (UseItemRequest) request()         {}
func (EquipItemRequest) request()       {}
func (UnequipItemRequest) request()     {}
