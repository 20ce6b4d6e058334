package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"

	"github.com/Buster-Games/buster-games/internal/domain"
)

// MatchResult is the final record handed to the campaign layer.
type MatchResult struct {
	MatchID      string            `json:"match_id"`
	Winner       domain.Side       `json:"winner"`
	PlayerSets   int               `json:"player_sets"`
	OpponentSets int               `json:"opponent_sets"`
	Sets         []domain.SetScore `json:"sets"`
	PointsPlayed int               `json:"points_played"`
	LongestRally int               `json:"longest_rally"`
	Difficulty   float64           `json:"difficulty"`
}

// PlayerWon reports whether the human side took the match.
func (r MatchResult) PlayerWon() bool { return r.Winner == domain.SidePlayer }

var (
	ErrReceiptsDisabled = errors.New("receipt signing is not configured")
	ErrInvalidReceipt   = errors.New("invalid match receipt")
)

const defaultReceiptTTL = 24 * time.Hour

// ReceiptService signs match results so a client cannot forge campaign progress.
type ReceiptService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewReceiptService returns nil when secret is empty; a nil service reports ErrReceiptsDisabled.
func NewReceiptService(secret, issuer string) *ReceiptService {
	if secret == "" {
		return nil
	}
	return &ReceiptService{secret: secret, issuer: issuer, ttl: defaultReceiptTTL, now: time.Now}
}

// Enabled reports whether receipts can be signed.
func (s *ReceiptService) Enabled() bool { return s != nil }

// Sign issues an HS256 token for result, bound to userID.
func (s *ReceiptService) Sign(userID string, result MatchResult) (string, error) {
	if s == nil {
		return "", ErrReceiptsDisabled
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if result.MatchID == "" {
		return "", fmt.Errorf("match id is required")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":    s.issuer,
		"sub":    userID,
		"iat":    now.Unix(),
		"exp":    now.Add(s.ttl).Unix(),
		"jti":    uuid.NewString(),
		"mid":    result.MatchID,
		"won":    result.PlayerWon(),
		"ps":     result.PlayerSets,
		"os":     result.OpponentSets,
		"points": result.PointsPlayed,
		"diff":   result.Difficulty,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Receipt is the verified content of a signed token.
type Receipt struct {
	UserID       string
	MatchID      string
	PlayerWon    bool
	PlayerSets   int
	OpponentSets int
	PointsPlayed int
	Difficulty   float64
}

// Verify parses a token produced by Sign.
func (s *ReceiptService) Verify(tokenString string) (Receipt, error) {
	if s == nil {
		return Receipt{}, ErrReceiptsDisabled
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Receipt{}, ErrInvalidReceipt
	}
	if s.issuer != "" && !claims.VerifyIssuer(s.issuer, true) {
		return Receipt{}, fmt.Errorf("%w: issuer mismatch", ErrInvalidReceipt)
	}

	r := Receipt{}
	r.UserID, _ = claims["sub"].(string)
	r.MatchID, _ = claims["mid"].(string)
	r.PlayerWon, _ = claims["won"].(bool)
	// JSON numbers decode as float64.
	if v, ok := claims["ps"].(float64); ok {
		r.PlayerSets = int(v)
	}
	if v, ok := claims["os"].(float64); ok {
		r.OpponentSets = int(v)
	}
	if v, ok := claims["points"].(float64); ok {
		r.PointsPlayed = int(v)
	}
	r.Difficulty, _ = claims["diff"].(float64)
	if r.UserID == "" || r.MatchID == "" {
		return Receipt{}, fmt.Errorf("%w: missing subject or match", ErrInvalidReceipt)
	}
	return r, nil
}
