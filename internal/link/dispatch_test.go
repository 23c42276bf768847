package link

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launch struct {
	name string
	args []string
}

type fakeLauncher struct {
	calls []launch
	err   error
}

func (f *fakeLauncher) Launch(name string, args ...string) error {
	f.calls = append(f.calls, launch{name, args})
	return f.err
}

func TestResolve(t *testing.T) {
	h := Helpers{
		Email: "mutt -s hi",
		URL:   HelperSet{General: "firefox", Video: "mpv", Image: ""},
		Local: HelperSet{General: "", Video: "vlc", Image: "feh"},
	}
	tests := []struct {
		name string
		link string
		inl  bool
		ctrl bool
		want Action
	}{
		{"email helper", "bob@example.com", false, false,
			Action{Target: "bob@example.com", Command: "mutt", Args: []string{"-s", "hi", "bob@example.com"}}},
		{"mailto strips scheme", "mailto:bob@example.com", false, false,
			Action{Target: "bob@example.com", Command: "mutt", Args: []string{"-s", "hi", "bob@example.com"}}},
		{"url general", "http://x.org/page", false, false,
			Action{Target: "http://x.org/page", Command: "firefox", Args: []string{"http://x.org/page"}}},
		{"url video", "http://x.org/v.mkv", false, false,
			Action{Target: "http://x.org/v.mkv", Command: "mpv", Args: []string{"http://x.org/v.mkv"}}},
		{"url image default", "http://x.org/a.png", false, false,
			Action{Target: "http://x.org/a.png", Command: DefaultOpenHelper, Args: []string{"http://x.org/a.png"}}},
		{"local image", "/tmp/a.jpg", false, false,
			Action{Target: "/tmp/a.jpg", Command: "feh", Args: []string{"/tmp/a.jpg"}}},
		{"local general default", "/tmp/notes.txt", false, false,
			Action{Target: "/tmp/notes.txt", Command: DefaultOpenHelper, Args: []string{"/tmp/notes.txt"}}},
		{"file url is local", "file:///tmp/m.mp4", false, false,
			Action{Target: "/tmp/m.mp4", Command: "vlc", Args: []string{"/tmp/m.mp4"}}},
		{"inline popup", "/tmp/a.jpg", true, false,
			Action{Popup: true, Target: "/tmp/a.jpg"}},
		{"inline skipped with ctrl", "/tmp/a.jpg", true, true,
			Action{Target: "/tmp/a.jpg", Command: "feh", Args: []string{"/tmp/a.jpg"}}},
		{"inline ignores plain files", "/tmp/notes.txt", true, false,
			Action{Target: "/tmp/notes.txt", Command: DefaultOpenHelper, Args: []string{"/tmp/notes.txt"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hh := h
			hh.Inline = tt.inl
			d := NewDispatcher(hh, nil)
			got, err := d.Resolve(tt.link, tt.ctrl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDefaultEmail(t *testing.T) {
	d := NewDispatcher(Helpers{}, nil)
	got, err := d.Resolve("bob@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, DefaultEmailHelper, got.Command)
}

func TestResolveNotALink(t *testing.T) {
	d := NewDispatcher(Helpers{}, nil)
	_, err := d.Resolve("hello", false)
	assert.ErrorIs(t, err, ErrNoLink)
}

func TestActivate(t *testing.T) {
	l := &fakeLauncher{}
	d := NewDispatcher(Helpers{Inline: true}, l)

	a, err := d.Activate("http://x.org", false)
	require.NoError(t, err)
	assert.False(t, a.Popup)
	require.Len(t, l.calls, 1)
	assert.Equal(t, launch{DefaultOpenHelper, []string{"http://x.org"}}, l.calls[0])

	a, err = d.Activate("/tmp/a.png", false)
	require.NoError(t, err)
	assert.True(t, a.Popup)
	assert.Len(t, l.calls, 1, "popup must not launch")
}

func TestActivateLaunchError(t *testing.T) {
	l := &fakeLauncher{err: errors.New("boom")}
	d := NewDispatcher(Helpers{}, l)
	_, err := d.Activate("http://x.org", false)
	assert.Error(t, err)

	d = NewDispatcher(Helpers{}, nil)
	_, err = d.Activate("http://x.org", false)
	assert.ErrorIs(t, err, ErrNoHelper)
}

func TestRun(t *testing.T) {
	l := &fakeLauncher{}
	d := NewDispatcher(Helpers{}, l)

	a, err := d.Run("feh -F", "/tmp/a.png")
	require.NoError(t, err)
	assert.Equal(t, "feh", a.Command)
	require.Len(t, l.calls, 1)
	assert.Equal(t, launch{"feh", []string{"-F", "/tmp/a.png"}}, l.calls[0])

	_, err = d.Run("", "/tmp/b")
	require.NoError(t, err)
	assert.Equal(t, launch{DefaultOpenHelper, []string{"/tmp/b"}}, l.calls[1])
}

func TestExecLauncher(t *testing.T) {
	e := NewExecLauncher(nil)
	require.NoError(t, e.Launch("sh", "-c", "exit 3"))
	e.Wait()
	assert.Equal(t, 0, e.Running())

	assert.ErrorIs(t, e.Launch(""), ErrNoHelper)
	assert.Error(t, e.Launch("/nonexistent/helper-binary"))
}
