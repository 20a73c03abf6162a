package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/signup"
	"go.uber.org/zap"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenMenu         Screen = "menu"
	ScreenPlans        Screen = "plans"
	ScreenCoffee       Screen = "coffee"
	ScreenTestimonials Screen = "testimonials"
	ScreenFAQ          Screen = "faq"
	ScreenDiagnostic   Screen = "diagnostic"
	ScreenSignup       Screen = "signup"
	ScreenContact      Screen = "contact"
)

// Messages for screen transitions
type screenTransitionMsg struct {
	screen Screen
	data   interface{}
}

type goBackMsg struct{}

// transitionTo returns a command requesting a screen change
func transitionTo(screen Screen, data interface{}) tea.Cmd {
	return func() tea.Msg { return screenTransitionMsg{screen: screen, data: data} }
}

// goBack returns a command requesting the previous screen
func goBack() tea.Msg { return goBackMsg{} }

// backKey is shared by every screen
var backKey = key.NewBinding(
	key.WithKeys("esc"),
	key.WithHelp("esc", "back"),
)

// Options configures the storefront application
type Options struct {
	Catalog *catalog.Catalog

	// ServerURL is the storefront server base URL. When empty, the
	// testimonial carousel runs in process.
	ServerURL string

	Signup  signup.Submitter // Receives completed signups
	Contact contact.Sender   // Receives contact messages

	Clock            clock.Clock   // Default clock.Real()
	AutoplayInterval time.Duration // Testimonial autoplay period
	JumpToIndicator  bool          // Number keys jump to the testimonial
	SubmitTimeout    time.Duration // Bounds a signup or contact submission

	// OnPlanChosen and OnDiagnosis, if set, are called so the caller can
	// remember the choice.
	OnPlanChosen func(planID string)
	OnDiagnosis  func(planID string)
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	opts Options

	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	Menu         MenuModel
	Plans        PlansModel
	Coffee       CoffeeModel
	Testimonials TestimonialsModel
	FAQ          FAQModel
	Diagnostic   DiagnosticModel
	Signup       SignupModel
	Contact      ContactModel

	// UI state
	Width  int
	Height int
}

// NewAppModel creates the storefront application positioned on the menu
func NewAppModel(opts Options) AppModel {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Signup == nil {
		opts.Signup = &signup.SimulatedSubmitter{Clock: opts.Clock}
	}
	if opts.Contact == nil {
		opts.Contact = &contact.SimulatedSender{Clock: opts.Clock}
	}

	return AppModel{
		opts:          opts,
		CurrentScreen: ScreenMenu,
		Menu:          NewMenuModel(),
		Width:         MinTerminalWidth,
		Height:        24,
	}
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return m.Menu.Init()
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m = m.resizeScreens()
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			m.closeCurrent()
			return m, tea.Quit
		}

	case screenTransitionMsg:
		return m.transitionTo(msg.screen, msg.data)

	case goBackMsg:
		return m.goBack()

	case feedReadyMsg:
		// The user left before the feed connected
		if m.CurrentScreen != ScreenTestimonials {
			msg.feed.Close()
			return m, nil
		}
	}

	return m.updateCurrentScreen(msg)
}

// resizeScreens propagates the terminal size to every screen
func (m AppModel) resizeScreens() AppModel {
	m.Menu.SetSize(m.Width, m.Height)
	m.Plans.SetSize(m.Width, m.Height)
	m.Coffee.SetSize(m.Width, m.Height)
	m.Testimonials.SetSize(m.Width, m.Height)
	m.FAQ.SetSize(m.Width, m.Height)
	m.Diagnostic.SetSize(m.Width, m.Height)
	m.Signup.SetSize(m.Width, m.Height)
	m.Contact.SetSize(m.Width, m.Height)
	return m
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenMenu:
		m.Menu, cmd = m.Menu.Update(msg)
	case ScreenPlans:
		m.Plans, cmd = m.Plans.Update(msg)
	case ScreenCoffee:
		m.Coffee, cmd = m.Coffee.Update(msg)
	case ScreenTestimonials:
		m.Testimonials, cmd = m.Testimonials.Update(msg)
	case ScreenFAQ:
		m.FAQ, cmd = m.FAQ.Update(msg)
	case ScreenDiagnostic:
		m.Diagnostic, cmd = m.Diagnostic.Update(msg)
	case ScreenSignup:
		m.Signup, cmd = m.Signup.Update(msg)
	case ScreenContact:
		m.Contact, cmd = m.Contact.Update(msg)
	}

	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen, data interface{}) (tea.Model, tea.Cmd) {
	m.closeCurrent()
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen
	logging.Debug("Screen transition",
		zap.String("from", string(m.PreviousScreen)),
		zap.String("to", string(screen)),
	)

	var cmd tea.Cmd
	c := m.opts.Catalog

	// Initialize the target screen with current state
	switch screen {
	case ScreenMenu:
		m.Menu = NewMenuModel()
		cmd = m.Menu.Init()

	case ScreenPlans:
		m.Plans = NewPlansModel(c)
		cmd = m.Plans.Init()

	case ScreenCoffee:
		m.Coffee = NewCoffeeModel(c)
		cmd = m.Coffee.Init()

	case ScreenTestimonials:
		m.Testimonials = NewTestimonialsModel(TestimonialsOptions{
			Items:     c.Testimonials,
			ServerURL: m.opts.ServerURL,
			Clock:     m.opts.Clock,
			Interval:  m.opts.AutoplayInterval,
			Jump:      m.opts.JumpToIndicator,
		})
		cmd = m.Testimonials.Init()

	case ScreenFAQ:
		m.FAQ = NewFAQModel(c.FAQ)
		cmd = m.FAQ.Init()

	case ScreenDiagnostic:
		m.Diagnostic = NewDiagnosticModel(c)
		m.Diagnostic.OnComplete = m.opts.OnDiagnosis
		cmd = m.Diagnostic.Init()

	case ScreenSignup:
		plan, ok := data.(catalog.Plan)
		if !ok {
			plan, _ = c.Plan("enthusiast")
		}
		if m.opts.OnPlanChosen != nil {
			m.opts.OnPlanChosen(plan.ID)
		}
		m.Signup = NewSignupModel(signup.NewForm(plan, m.opts.Signup, m.opts.SubmitTimeout))
		cmd = m.Signup.Init()

	case ScreenContact:
		m.Contact = NewContactModel(contact.NewForm(m.opts.Contact, contact.Options{
			Clock:   m.opts.Clock,
			Timeout: m.opts.SubmitTimeout,
		}), c.Contact)
		cmd = m.Contact.Init()
	}

	m = m.resizeScreens()
	return m, cmd
}

// goBack returns to the menu; from the menu it quits
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	if m.CurrentScreen == ScreenMenu {
		return m, tea.Quit
	}
	// Signup returns to wherever the plan was chosen
	if m.CurrentScreen == ScreenSignup && (m.PreviousScreen == ScreenPlans || m.PreviousScreen == ScreenDiagnostic) {
		return m.transitionTo(m.PreviousScreen, nil)
	}
	return m.transitionTo(ScreenMenu, nil)
}

// closeCurrent releases resources held by the screen being left
func (m AppModel) closeCurrent() {
	switch m.CurrentScreen {
	case ScreenTestimonials:
		m.Testimonials.Close()
	case ScreenContact:
		m.Contact.Close()
	}
}

// View renders the current screen
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenMenu:
		return m.Menu.View()
	case ScreenPlans:
		return m.Plans.View()
	case ScreenCoffee:
		return m.Coffee.View()
	case ScreenTestimonials:
		return m.Testimonials.View()
	case ScreenFAQ:
		return m.FAQ.View()
	case ScreenDiagnostic:
		return m.Diagnostic.View()
	case ScreenSignup:
		return m.Signup.View()
	case ScreenContact:
		return m.Contact.View()
	default:
		return "Unknown screen"
	}
}

// Run starts the storefront in the alternate screen and blocks until the
// user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
