package desktop

import (
	"context"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/game"
	"github.com/lehigh-university-libraries/empathy/internal/images"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/session"
)

const title = "Empathy"

// UI shows rounds in a single fyne window. The window stays open between
// rounds so the app does not quit when a round's content is torn down.
type UI struct {
	app    fyne.App
	window fyne.Window
	onQuit func()
}

// New creates the main window. onQuit is called when the player closes it.
func New(app fyne.App, onQuit func()) *UI {
	u := &UI{app: app, onQuit: onQuit}
	u.window = app.NewWindow(title)
	u.window.SetContent(widget.NewLabel("Loading..."))
	u.window.Resize(fyne.NewSize(images.DisplayWidth+200, images.DisplayHeight+160))
	u.window.SetCloseIntercept(func() {
		slog.Info("Window closed by player")
		if u.onQuit != nil {
			u.onQuit()
		}
	})
	return u
}

// Run shows the window and runs play on its own goroutine while the fyne
// event loop owns the calling goroutine. The app quits when play returns.
func (u *UI) Run(play func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- play()
		fyne.Do(u.app.Quit)
	}()
	u.window.CenterOnScreen()
	u.window.ShowAndRun()
	return <-errCh
}

// Open puts the round's picture and buttons in the window.
func (u *UI) Open(ctx context.Context, roundID string, img *models.Image, guess *session.Guess) (game.Window, error) {
	w := &window{ui: u, roundID: roundID}
	fyne.DoAndWait(func() {
		w.content = w.build(img, guess)
		u.window.SetContent(w.content)
		u.window.Show()
	})
	return w, nil
}

type window struct {
	ui      *UI
	roundID string
	content fyne.CanvasObject
	buttons []*widget.Button
	once    sync.Once
}

func (w *window) build(img *models.Image, guess *session.Guess) fyne.CanvasObject {
	question := widget.NewLabelWithStyle(game.Question, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	picture := canvas.NewImageFromImage(img.Display)
	picture.FillMode = canvas.ImageFillContain
	picture.SetMinSize(fyne.NewSize(images.DisplayWidth, images.DisplayHeight))

	choices := make([]fyne.CanvasObject, 0, len(emotion.Buttons()))
	for _, b := range emotion.Buttons() {
		label := b.Label
		btn := widget.NewButton(b.Text, nil)
		btn.OnTapped = func() {
			if guess.Submit(label) {
				slog.Debug("Guess submitted", "round_id", w.roundID, "guess", label)
				w.disableButtons()
			}
		}
		w.buttons = append(w.buttons, btn)
		choices = append(choices, btn)
	}

	return container.NewBorder(
		question,
		container.NewGridWithColumns(len(choices), choices...),
		nil,
		nil,
		container.NewCenter(picture),
	)
}

func (w *window) disableButtons() {
	for _, b := range w.buttons {
		b.Disable()
	}
}

func (w *window) ShowVerdict(ctx context.Context, text string) error {
	return w.show(ctx, "Result", text)
}

func (w *window) ShowMessage(ctx context.Context, text string) error {
	return w.show(ctx, title, text)
}

func (w *window) show(ctx context.Context, heading, text string) error {
	var (
		d    dialog.Dialog
		once sync.Once
	)
	done := make(chan struct{})
	fyne.DoAndWait(func() {
		d = dialog.NewInformation(heading, text, w.ui.window)
		d.SetOnClosed(func() { once.Do(func() { close(done) }) })
		d.Show()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		fyne.DoAndWait(d.Hide)
		return ctx.Err()
	}
}

// Close drops the round's content so its image can be released.
func (w *window) Close() error {
	w.once.Do(func() {
		fyne.DoAndWait(func() {
			if w.ui.window.Content() == w.content {
				w.ui.window.SetContent(widget.NewLabel("Loading next image..."))
			}
			w.content = nil
			w.buttons = nil
		})
	})
	return nil
}
