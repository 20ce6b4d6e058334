package nakama

import (
	"fmt"
	"time"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func millis(d time.Duration) int64 { return d.Milliseconds() }

func vecValue(v domain.Vec2) map[string]interface{} {
	return map[string]interface{}{"x": v.X, "y": v.Y}
}

func rectValue(r domain.Rect) map[string]interface{} {
	return map[string]interface{}{"min_x": r.MinX, "min_y": r.MinY, "max_x": r.MaxX, "max_y": r.MaxY}
}

func scoreValue(s domain.Snapshot) map[string]interface{} {
	sets := make([]interface{}, len(s.Completed))
	for i, set := range s.Completed {
		sets[i] = map[string]interface{}{"player": set.Player, "opponent": set.Opponent}
	}
	return map[string]interface{}{
		"player_points":   s.PlayerPoints,
		"opponent_points": s.OpponentPoints,
		"player_games":    s.PlayerGames,
		"opponent_games":  s.OpponentGames,
		"player_sets":     s.PlayerSets,
		"opponent_sets":   s.OpponentSets,
		"set_index":       s.SetIndex,
		"deuce":           s.Deuce,
		"advantage":       s.Advantage.String(),
		"over":            s.Over,
		"winner":          s.Winner.String(),
		"sets":            sets,
	}
}

// eventFields flattens an event payload into the wire map. Unknown kinds return an error.
func eventFields(ev app.Event) (map[string]interface{}, error) {
	fields := map[string]interface{}{
		"kind":  string(ev.Kind),
		"at_ms": millis(ev.At),
	}
	switch p := ev.Payload.(type) {
	case app.ServeStartedPayload:
		fields["server"] = p.Server.String()
		fields["service_box"] = rectValue(p.ServiceBox)
	case app.ShotStruckPayload:
		fields["hitter"] = p.Hitter.String()
		fields["shot"] = p.Kind.String()
		fields["from"] = vecValue(p.From)
		fields["target"] = vecValue(p.Target)
		fields["duration_ms"] = millis(p.Duration)
		fields["peak_height"] = p.PeakHeight
		fields["shot_number"] = p.ShotNumber
	case app.BallLandedPayload:
		fields["position"] = vecValue(p.Position)
		fields["hitter"] = p.Hitter.String()
		fields["in_bounds"] = p.InBounds
		fields["fault"] = p.Fault
	case app.WindowOpenedPayload:
		fields["window_id"] = p.WindowID
		fields["open_at_ms"] = millis(p.OpenAt)
		fields["close_at_ms"] = millis(p.CloseAt)
	case app.WindowClosedPayload:
		fields["window_id"] = p.WindowID
		fields["hit"] = p.Hit
		fields["shot"] = p.Kind.String()
	case app.FaultPayload:
		fields["side"] = p.Side.String()
		fields["shot"] = p.Kind.String()
	case app.ScorePayload:
		fields["winner"] = p.Winner.String()
		fields["tier"] = p.Tier.String()
		fields["score"] = scoreValue(p.Score)
		fields["call"] = p.Call
	default:
		return nil, fmt.Errorf("unsupported payload %T for event %s", ev.Payload, ev.Kind)
	}
	return fields, nil
}

func characterValue(c app.CharacterFrame) map[string]interface{} {
	return map[string]interface{}{
		"position": vecValue(c.Position),
		"target":   vecValue(c.Target),
		"facing":   c.Facing.String(),
		"swinging": c.Swinging,
	}
}

func frameFields(f app.FrameState, call string) map[string]interface{} {
	fields := map[string]interface{}{
		"now_ms": millis(f.Now),
		"phase":  string(f.Phase),
		"stage":  string(f.Stage),
		"server": f.Server.String(),
		"call":   call,
		"ball": map[string]interface{}{
			"position":     vecValue(f.Ball.Position),
			"shadow":       vecValue(f.Ball.Shadow),
			"elevation":    f.Ball.Elevation,
			"shadow_scale": f.Ball.ShadowScale,
			"scale":        f.Ball.Scale,
			"in_flight":    f.Ball.InFlight,
		},
		"player":   characterValue(f.Player),
		"opponent": characterValue(f.Opponent),
	}
	if w := f.Window; w != nil {
		fields["window"] = map[string]interface{}{
			"id":          w.ID,
			"open_at_ms":  millis(w.OpenAt),
			"close_at_ms": millis(w.CloseAt),
			"open":        w.Open,
		}
	}
	return fields
}

func encodeStruct(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func encodeEvent(ev app.Event) ([]byte, error) {
	fields, err := eventFields(ev)
	if err != nil {
		return nil, err
	}
	return encodeStruct(fields)
}

// tapRequest is the decoded OpTap payload.
type tapRequest struct {
	AtMs  int64
	HasAt bool
	X     float64
	Y     float64
}

// decodeTap reads an optional structpb payload {at_ms, x, y}. An empty payload is a tap "now".
func decodeTap(data []byte) (tapRequest, error) {
	req := tapRequest{}
	if len(data) == 0 {
		return req, nil
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return req, err
	}
	fields := s.GetFields()
	if v, ok := fields["at_ms"]; ok {
		req.AtMs = int64(v.GetNumberValue())
		req.HasAt = true
	}
	req.X = fields["x"].GetNumberValue()
	req.Y = fields["y"].GetNumberValue()
	return req, nil
}

func encodeError(code int, message string) ([]byte, error) {
	return encodeStruct(map[string]interface{}{"code": code, "message": message})
}

// matchLabel renders the listing label, e.g. {"game":"tennis","open":false,"phase":"serving"}.
func matchLabel(phase app.Phase, open bool) (string, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"game":  MatchNameTennis,
		"phase": string(phase),
		"open":  open,
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
