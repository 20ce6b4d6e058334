package sim

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Buster-Games/buster-games/internal/app"
	"github.com/Buster-Games/buster-games/internal/domain"
)

// helpless never returns a ball and serves to the middle of the player's box.
type helpless struct{}

func (helpless) Serve(court domain.Court) domain.ShotOutcome {
	return domain.ShotOutcome{Kind: domain.ShotReturn, Hitter: domain.SideOpponent, Target: court.ServiceBox(domain.SidePlayer, 0).Center()}
}

func (helpless) DecideReturn(_, _ domain.Vec2, _ domain.Court) (domain.ShotOutcome, bool) {
	return domain.ShotOutcome{Kind: domain.ShotUnreached, Hitter: domain.SideOpponent}, false
}

func (helpless) Windup() time.Duration { return 0 }
func (helpless) Pace() float64         { return 1 }
func (helpless) MoveSpeed() float64    { return 200 }

func TestAutoplayerBeatsHelplessOpponent(t *testing.T) {
	m, err := app.NewMatch(app.DefaultSettings(), rand.New(rand.NewSource(1)), app.WithOpponent(helpless{}), app.WithID("m1"))
	if err != nil {
		t.Fatalf("NewMatch() failed: %v", err)
	}
	res, err := NewAutoplayer(1, rand.New(rand.NewSource(2))).Play(context.Background(), m)
	if err != nil {
		t.Fatalf("Play() failed: %v", err)
	}
	if res.Winner != domain.SidePlayer || res.PlayerSets != 1 || res.OpponentSets != 0 {
		t.Fatalf("result = %+v, want player win", res)
	}
	// Casual format to love: 3 games of 4 points.
	if res.PointsPlayed != 12 {
		t.Fatalf("PointsPlayed = %d, want 12", res.PointsPlayed)
	}
	if res.Clock <= 0 || res.Shots < res.PointsPlayed {
		t.Fatalf("result = %+v", res)
	}
}

func TestNewAutoplayerClampsAccuracy(t *testing.T) {
	if a := NewAutoplayer(1.5, nil); a.accuracy != 1 {
		t.Fatalf("accuracy = %v, want 1", a.accuracy)
	}
	if a := NewAutoplayer(-1, nil); a.accuracy != 0 {
		t.Fatalf("accuracy = %v, want 0", a.accuracy)
	}
}

func TestAutoplayerTapsInsideWindow(t *testing.T) {
	a := NewAutoplayer(1, rand.New(rand.NewSource(3)))
	for id := uint64(1); id <= 200; id++ {
		w := domain.TimingWindow{ID: id, OpenAt: time.Second, CloseAt: time.Second + 600*time.Millisecond}
		a.plan(w)
		if !a.swing {
			t.Fatal("perfect autoplayer skipped a window")
		}
		if a.tapAt < w.OpenAt || a.tapAt > w.CloseAt-a.step {
			t.Fatalf("tapAt = %v outside [%v, %v]", a.tapAt, w.OpenAt, w.CloseAt-a.step)
		}
	}
}

// With no swings and a helpless opponent every point goes to the server, so
// games never reach a two point lead.
func TestRunnerReportsStalledMatch(t *testing.T) {
	r, err := NewRunner(app.DefaultSettings(), RunnerConfig{
		Accuracy: 0,
		MaxClock: 5 * time.Minute,
		Options:  []app.Option{app.WithOpponent(helpless{})},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner() failed: %v", err)
	}
	if _, err := r.Run(context.Background(), 2); !errors.Is(err, ErrMatchStalled) {
		t.Fatalf("Run() = %v, want ErrMatchStalled", err)
	}
}

func TestRunnerIsDeterministic(t *testing.T) {
	settings := app.DefaultSettings()
	settings.Difficulty = 0.2

	run := func(parallel int) []Result {
		r, err := NewRunner(settings, RunnerConfig{Seed: 99, Accuracy: 0.8, Parallel: parallel}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewRunner() failed: %v", err)
		}
		results, err := r.Run(context.Background(), 4)
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		return results
	}

	serial, concurrent := run(1), run(4)
	if !reflect.DeepEqual(serial, concurrent) {
		t.Fatalf("results differ between serial and concurrent runs:\n%+v\n%+v", serial, concurrent)
	}
	for i, res := range serial {
		if res.Seed != 99+int64(i) || !res.Winner.Valid() {
			t.Fatalf("result %d = %+v", i, res)
		}
	}
}

func TestRunnerStopsOnCancel(t *testing.T) {
	r, err := NewRunner(app.DefaultSettings(), RunnerConfig{Accuracy: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner() failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, 3); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
}

func TestNewRunnerRejectsInvalidSettings(t *testing.T) {
	settings := app.DefaultSettings()
	settings.Format.BestOf = 2
	if _, err := NewRunner(settings, RunnerConfig{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for even best-of")
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    Summary
	}{
		{name: "Empty", want: Summary{}},
		{
			name: "Mixed",
			results: []Result{
				{Winner: domain.SidePlayer, PointsPlayed: 12, LongestRally: 3, Clock: 40 * time.Second},
				{Winner: domain.SideOpponent, PointsPlayed: 20, LongestRally: 7, Clock: 80 * time.Second},
			},
			want: Summary{
				Matches:         2,
				PlayerWins:      1,
				OpponentWins:    1,
				WinRate:         0.5,
				AvgPoints:       16,
				AvgLongestRally: 5,
				LongestRally:    7,
				AvgClock:        time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summarize(tt.results); got != tt.want {
				t.Fatalf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
