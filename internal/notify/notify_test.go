package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	sounds   int
	dialogs  int
	dismissN int // dismiss on this dialog; 0 never
	timeouts []time.Duration
	err      error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) PlaySound(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sounds++
	return nil
}

func (f *fakeBackend) ShowDialog(_ context.Context, _, _ string, timeout time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dialogs++
	f.timeouts = append(f.timeouts, timeout)
	if f.err != nil {
		return false, f.err
	}
	return f.dismissN != 0 && f.dialogs >= f.dismissN, nil
}

func (f *fakeBackend) Choose(context.Context, string, string, []string) ([]string, bool, error) {
	return nil, false, nil
}

func TestAlarmStopsWhenDismissed(t *testing.T) {
	fb := &fakeBackend{dismissN: 3}
	err := Alarm(context.Background(), fb, Alert{Title: "Start", Message: "pomodoro"},
		Options{SoundFile: "ping.aiff", Interval: time.Millisecond, MaxDuration: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 3, fb.dialogs)
	assert.Equal(t, 3, fb.sounds)
	for _, to := range fb.timeouts {
		assert.LessOrEqual(t, to, time.Minute)
	}
}

func TestAlarmStopsAtMaxDuration(t *testing.T) {
	fb := &fakeBackend{}
	start := time.Now()
	err := Alarm(context.Background(), fb, Alert{Title: "t"},
		Options{Interval: 5 * time.Millisecond, MaxDuration: 40 * time.Millisecond})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fb.dialogs, 1)
	assert.Zero(t, fb.sounds, "no sound file configured")
	assert.Less(t, time.Since(start), 2*time.Second)
}

// slowBackend keeps each dialog open for the full timeout it is given.
type slowBackend struct {
	fakeBackend
}

func (s *slowBackend) ShowDialog(ctx context.Context, title, msg string, timeout time.Duration) (bool, error) {
	if _, err := s.fakeBackend.ShowDialog(ctx, title, msg, timeout); err != nil {
		return false, err
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(timeout):
	}
	return false, nil
}

func TestAlarmRepeatsWhileDialogOpen(t *testing.T) {
	sb := &slowBackend{}
	start := time.Now()
	err := Alarm(context.Background(), sb, Alert{Title: "Start"},
		Options{SoundFile: "ping.aiff", Interval: 20 * time.Millisecond, MaxDuration: 200 * time.Millisecond})
	require.NoError(t, err)

	sb.mu.Lock()
	defer sb.mu.Unlock()
	assert.Greater(t, sb.sounds, 1)
	assert.Equal(t, sb.sounds, sb.dialogs)
	for _, to := range sb.timeouts {
		assert.LessOrEqual(t, to, 20*time.Millisecond)
	}
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAlarmHonoursContext(t *testing.T) {
	fb := &fakeBackend{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Alarm(ctx, fb, Alert{}, Options{Interval: time.Hour, MaxDuration: time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fb.dialogs)
}

func TestAlarmDialogError(t *testing.T) {
	fb := &fakeBackend{err: errors.New("no display")}
	err := Alarm(context.Background(), fb, Alert{}, Options{Interval: time.Millisecond, MaxDuration: time.Second})
	assert.ErrorContains(t, err, "no display")
}

type recorder struct {
	calls   [][]string
	started [][]string
	out     string
	err     error
}

func (r *recorder) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return []byte(r.out), r.err
}

func (r *recorder) Start(name string, args ...string) error {
	r.started = append(r.started, append([]string{name}, args...))
	return nil
}

func TestMacOSDialog(t *testing.T) {
	rec := &recorder{out: "button returned:Stop, gave up:false\n"}
	m := &MacOS{cmd: rec}

	ok, err := m.ShowDialog(context.Background(), "Start", `say "hi"`, 90*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "osascript", rec.calls[0][0])
	assert.Contains(t, rec.calls[0][2], `display dialog "say \"hi\""`)
	assert.Contains(t, rec.calls[0][2], "giving up after 90")

	rec.out = "button returned:, gave up:true\n"
	ok, err = m.ShowDialog(context.Background(), "Start", "x", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.PlaySound(context.Background(), "/tmp/ping.aiff"))
	assert.Equal(t, [][]string{{"afplay", "/tmp/ping.aiff"}}, rec.started)
}

func TestMacOSChoose(t *testing.T) {
	rec := &recorder{out: "Read, Walk, run\n"}
	m := &MacOS{cmd: rec}

	sel, ok, err := m.Choose(context.Background(), "Habits", "Done today?", []string{"Read", "Walk, run", "Sleep"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Read", "Walk, run"}, sel)

	rec.out = "false\n"
	_, ok, err = m.Choose(context.Background(), "Habits", "Done today?", []string{"Read"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinuxChoose(t *testing.T) {
	rec := &recorder{out: "Read\nSleep\n"}
	l := &Linux{cmd: rec}

	sel, ok, err := l.Choose(context.Background(), "Habits", "Done today?", []string{"Read", "Sleep"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Read", "Sleep"}, sel)
	assert.Contains(t, rec.calls[0], "--checklist")
}

func TestNewBackend(t *testing.T) {
	for _, name := range []string{"macos", "linux", "log", "auto", ""} {
		b, err := NewBackend(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, b.Name())
	}
	_, err := NewBackend("pager")
	assert.Error(t, err)
}
