package app

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// VoiceService mints Vivox access tokens so room members can join a
// per-room voice channel.
type VoiceService struct {
	secret string
	issuer string
	domain string
	ttl    time.Duration
}

const (
	VoiceTokenActionLogin = "login"
	VoiceTokenActionJoin  = "join"

	defaultVoiceTokenTTL = time.Hour
)

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
		ttl:    defaultVoiceTokenTTL,
	}
}

// RoomChannelName derives the voice channel name for a room code.
func RoomChannelName(roomCode string) string {
	return "room-" + strings.ToUpper(roomCode)
}

// GenerateToken signs a Vivox token for the given user and action. Join
// tokens additionally need the target channel name.
func (s *VoiceService) GenerateToken(user, action, channelName string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("voice service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", fmt.Errorf("voice config is incomplete")
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, channelName, userURI)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": time.Now().Add(s.ttl).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

func (s *VoiceService) channelURI(channelName string) string {
	return "sip:confctl-g-" + channelName + "@" + s.domain
}

func (s *VoiceService) targetURI(action, channelName, userURI string) (string, error) {
	switch action {
	case VoiceTokenActionLogin:
		return userURI, nil
	case VoiceTokenActionJoin:
		if channelName == "" {
			return "", fmt.Errorf("channel name is required for join tokens")
		}
		return s.channelURI(channelName), nil
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}
}
