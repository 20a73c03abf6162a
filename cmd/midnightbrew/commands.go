package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/config"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/diagnostic"
	"github.com/muurk/midnightbrew/internal/discovery"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/muurk/midnightbrew/internal/stream"
	"github.com/muurk/midnightbrew/internal/ui"
	"github.com/muurk/midnightbrew/internal/urls"
	"github.com/muurk/midnightbrew/internal/wizard"
)

// Command flags
var (
	taste       string
	scene       string
	frequency   string
	contactName string
	contactFrom string
	subject     string
	message     string
	follow      bool
	scanTimeout int
	saveServer  bool
)

func init() {
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(coffeeCmd)
	rootCmd.AddCommand(testimonialsCmd)
	rootCmd.AddCommand(faqCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(contactCmd)
	rootCmd.AddCommand(serversCmd)
}

// plansCmd lists the subscription plans
var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the subscription plans",
	Long: `Display every subscription plan with its first-month price, regular
price, discount and included features.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalogForCommand()
		if err != nil {
			return err
		}
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("PLANS", "midnightbrew plans", ui.Param{Key: "Plans", Value: strconv.Itoa(len(c.Plans))})
		p.PrintPlans(c)
		p.Println(ui.MutedStyle.Render("Subscribe from the storefront: midnightbrew"))
		return nil
	},
}

// coffeeCmd shows the coffee of the month
var coffeeCmd = &cobra.Command{
	Use:   "coffee",
	Short: "Show the coffee of the month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalogForCommand()
		if err != nil {
			return err
		}
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("COFFEE OF THE MONTH", "midnightbrew coffee", ui.Param{Key: "Origin", Value: c.MonthlyCoffee.Origin})
		p.PrintCoffee(c)
		return nil
	},
}

// testimonialsCmd prints testimonials, or follows a server's carousel
var testimonialsCmd = &cobra.Command{
	Use:   "testimonials",
	Short: "Show customer testimonials",
	Long: `Display customer testimonials.

With --follow the command connects to a storefront server and prints each
testimonial as the server's carousel advances, until interrupted.`,
	Example: `  # Print every testimonial
  midnightbrew testimonials

  # Follow the carousel of a server found on the network
  midnightbrew testimonials --follow --server auto`,
	Args: cobra.NoArgs,
	RunE: runTestimonials,
}

func init() {
	testimonialsCmd.Flags().BoolVar(&follow, "follow", false, "Follow the testimonial carousel of a server")
}

func runTestimonials(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	if !follow {
		c, err := catalogForCommand()
		if err != nil {
			return err
		}
		p.PrintHeader("TESTIMONIALS", "midnightbrew testimonials")
		p.PrintTestimonials(c)
		return nil
	}

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	base, err := resolveServer(ctx, settings)
	if err != nil {
		return err
	}
	if base == "" {
		return errors.New("--follow needs a server (use --server or set server.url)")
	}

	client, err := stream.Dial(ctx, base, false)
	if err != nil {
		p.PrintError("Connection failed", err, []string{
			"Start the server with: midnightbrew-server",
			"Run 'midnightbrew servers' to find servers on your network",
			"Server guide: " + urls.ServerGuide,
		})
		return err
	}
	defer func() { _ = client.Close() }()

	p.PrintHeader("TESTIMONIALS", "midnightbrew testimonials --follow", ui.Param{Key: "Server", Value: base})
	return followCarousel(ctx, p, client.Messages())
}

// followCarousel prints the testimonial under the carousel whenever the
// logical item changes.
func followCarousel(ctx context.Context, p *ui.Printer, messages <-chan stream.Message) error {
	var items []catalog.Testimonial
	last := -1

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return errors.New("server closed the connection")
			}
			switch msg.Type {
			case stream.TypeItems:
				items = msg.Items
			case stream.TypeFrame:
				if msg.Frame == nil || len(items) == 0 || msg.Frame.Logical == last {
					continue
				}
				last = msg.Frame.Logical
				if last >= len(items) {
					continue
				}
				p.Println(ui.RenderIndicators(len(items), last))
				p.Println(ui.RenderTestimonial(items[last], p.Width()))
			case stream.TypeError:
				p.PrintWarning("Server error", ui.Detail{Key: "Message", Value: msg.Error})
			}
		}
	}
}

// faqCmd prints the FAQ
var faqCmd = &cobra.Command{
	Use:   "faq [id...]",
	Short: "Show frequently asked questions",
	Long: `Display the frequently asked questions with their answers.

Pass one or more question numbers to show only those entries.`,
	Example: `  # All questions
  midnightbrew faq

  # Only questions 2 and 5
  midnightbrew faq 2 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalogForCommand()
		if err != nil {
			return err
		}

		ids := make([]int, 0, len(args))
		for _, a := range args {
			id, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid question number %q", a)
			}
			ids = append(ids, id)
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("FAQ", "midnightbrew faq")
		p.PrintFAQ(c, ids...)
		p.Println(ui.MutedStyle.Render("More help: " + urls.HelpCenter))
		return nil
	},
}

// diagnoseCmd runs the taste diagnostic non-interactively
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Find the plan that suits your taste",
	Long: `Answer the three diagnostic questions with flags and get a plan and
bean recommendation.

Run the interactive storefront to answer the questions one by one.`,
	Example: `  midnightbrew diagnose --taste fruity --scene morning --frequency daily1`,
	Args:    cobra.NoArgs,
	RunE:    runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVar(&taste, "taste", "", "Preferred taste ("+optionValues(diagnostic.QuestionTaste)+")")
	diagnoseCmd.Flags().StringVar(&scene, "scene", "", "Favourite coffee moment ("+optionValues(diagnostic.QuestionScene)+")")
	diagnoseCmd.Flags().StringVar(&frequency, "frequency", "", "How often you drink coffee ("+optionValues(diagnostic.QuestionFrequency)+")")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	c, err := catalogForCommand()
	if err != nil {
		return err
	}

	answers := wizard.Values{
		diagnostic.QuestionTaste:     taste,
		diagnostic.QuestionScene:     scene,
		diagnostic.QuestionFrequency: frequency,
	}
	if err := checkAnswers(answers); err != nil {
		return err
	}

	rec, err := diagnostic.Recommend(c, answers)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.PrintHeader("TASTE DIAGNOSTIC", "midnightbrew diagnose",
		ui.Param{Key: "Taste", Value: taste},
		ui.Param{Key: "Scene", Value: scene},
		ui.Param{Key: "Frequency", Value: frequency},
	)
	p.PrintRecommendation(rec)

	if settings, err := config.Load(); err == nil {
		settings.RecordDiagnosis(rec.Plan.ID)
		saveSettings(settings)
	}
	return nil
}

// checkAnswers rejects missing or unknown diagnostic answers, naming the
// accepted values.
func checkAnswers(answers wizard.Values) error {
	var problems []string
	for _, q := range diagnostic.Questions {
		v := answers[q.ID]
		if !hasOption(q, v) {
			problems = append(problems, fmt.Sprintf("--%s must be one of: %s", flagFor(q.ID), optionValues(q.ID)))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "\n       "))
	}
	return nil
}

func hasOption(q diagnostic.Question, value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func flagFor(questionID string) string {
	switch questionID {
	case diagnostic.QuestionTaste:
		return "taste"
	case diagnostic.QuestionScene:
		return "scene"
	default:
		return "frequency"
	}
}

func optionValues(questionID string) string {
	for _, q := range diagnostic.Questions {
		if q.ID != questionID {
			continue
		}
		values := make([]string, len(q.Options))
		for i, o := range q.Options {
			values[i] = o.Value
		}
		return strings.Join(values, ", ")
	}
	return ""
}

// contactCmd shows contact details or sends a message
var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Show contact details or send us a message",
	Long: `Without flags, display the Midnight Brew contact details.

With --message, send a contact message. Messages go to the configured
storefront server; without one, sending is simulated.`,
	Example: `  # Contact details
  midnightbrew contact

  # Send a message
  midnightbrew contact --name "山田 太郎" --email taro@example.com \
    --subject delivery --message "配送日を変更したいです"`,
	Args: cobra.NoArgs,
	RunE: runContact,
}

func init() {
	values := make([]string, len(contact.Subjects))
	for i, s := range contact.Subjects {
		values[i] = s.Value
	}
	contactCmd.Flags().StringVar(&contactName, "name", "", "Your name")
	contactCmd.Flags().StringVar(&contactFrom, "email", "", "Your email address")
	contactCmd.Flags().StringVar(&subject, "subject", "", "Subject ("+strings.Join(values, ", ")+")")
	contactCmd.Flags().StringVar(&message, "message", "", "Message text")
}

func runContact(cmd *cobra.Command, args []string) error {
	c, err := catalogForCommand()
	if err != nil {
		return err
	}

	if message == "" {
		p := ui.NewPrinter(cmd.OutOrStdout())
		p.PrintHeader("CONTACT", "midnightbrew contact")
		p.PrintContactInfo(c)
		p.Println(ui.MutedStyle.Render("Web form: " + urls.ContactPage))
		return nil
	}

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	base, err := resolveServer(cmd.Context(), settings)
	if err != nil {
		return err
	}

	var sender contact.Sender = &contact.SimulatedSender{}
	target := "simulated"
	if base != "" {
		sender = contact.NewHTTPSender(base)
		target = base
	}

	form := contact.NewForm(sender, contact.Options{Timeout: settings.Storefront.SubmitTimeout})
	defer form.Close()

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Contact",
		Command: "midnightbrew contact",
		Params: []ui.Param{
			{Key: "Subject", Value: subject},
			{Key: "Server", Value: target},
		},
		StepNames:    []string{"Check message", "Send message"},
		Output:       cmd.OutOrStdout(),
		Troubleshoot: contactTips,
	})

	return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Detail, error) {
		step := contact.Step()
		values := wizard.Values{
			contact.FieldName:    contactName,
			contact.FieldEmail:   contactFrom,
			contact.FieldSubject: subject,
			contact.FieldMessage: message,
		}

		onStep(1, ui.StepRunning, "")
		for field, value := range values {
			form.UpdateField(step.ID, field, value)
		}
		if errs := form.ValidateStep(step.ID); len(errs) > 0 {
			onStep(1, ui.StepFailed, "")
			return nil, &wizard.ValidationFailed{Step: step.ID, Fields: errs}
		}
		onStep(1, ui.StepComplete, "")

		onStep(2, ui.StepRunning, "")
		if ctx == nil {
			ctx = context.Background()
		}
		receipt, err := form.Submit(ctx)
		if err != nil {
			onStep(2, ui.StepFailed, "")
			return nil, err
		}
		onStep(2, ui.StepComplete, "")

		return []ui.Detail{
			{Key: "Ticket", Value: receipt.ID},
			{Key: "Message", Value: receipt.Message},
		}, nil
	})
}

// contactTips turns a contact failure into troubleshooting lines.
func contactTips(err error) []string {
	var vf *wizard.ValidationFailed
	if errors.As(err, &vf) {
		fields := make([]string, 0, len(vf.Fields))
		for f := range vf.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		tips := make([]string, 0, len(fields))
		for _, f := range fields {
			tips = append(tips, fmt.Sprintf("--%s: %s", f, vf.Fields[f]))
		}
		return tips
	}

	var tips []string
	for _, line := range strings.Split(signup.TroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		tips = append(tips, line)
	}
	return append(tips, "Web form: "+urls.ContactPage)
}

// serversCmd discovers storefront servers on the local network
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Find storefront servers on the network",
	Long: `Find midnightbrew-server instances using mDNS/DNS-SD discovery.

With --save, offer to store the first server found as the default server
in the config file.`,
	Example: `  # Scan for 5 seconds (default)
  midnightbrew servers

  # Longer scan, then save the result
  midnightbrew servers --timeout 15 --save`,
	Args: cobra.NoArgs,
	RunE: runServers,
}

func init() {
	serversCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	serversCmd.Flags().BoolVar(&saveServer, "save", false, "Offer to save the first server as the default")
}

func runServers(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := ui.NewPrinter(out)
	p.PrintHeader("SERVERS", "midnightbrew servers", ui.Param{Key: "Timeout", Value: fmt.Sprintf("%ds", scanTimeout)})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, err := discovery.Scan(ctx, time.Duration(scanTimeout)*time.Second)
	if err != nil {
		p.PrintError("Scan failed", err, []string{"Check that multicast traffic is allowed on this network"})
		return err
	}

	if len(services) == 0 {
		p.PrintWarning("No servers found")
		p.Println("Troubleshooting:")
		p.Println("  - Start a server with: midnightbrew-server --advertise")
		p.Println("  - Check that you are on the same network as the server")
		p.Println("  - Try increasing --timeout for slower networks")
		p.Println("  - Server guide: " + urls.ServerGuide)
		return nil
	}

	for i, svc := range services {
		details := []ui.Detail{
			{Key: "URL", Value: svc.BaseURL()},
			{Key: "Host", Value: svc.Hostname},
		}
		if v := svc.Version(); v != "" {
			details = append(details, ui.Detail{Key: "Version", Value: v})
		}
		p.PrintSuccess(fmt.Sprintf("%d. %s", i+1, svc.Instance), details...)
	}

	if !saveServer {
		p.Println("Use 'midnightbrew --server <url>' to connect to a server")
		return nil
	}

	first := services[0].BaseURL()
	if !ui.Confirm(cmd.InOrStdin(), out, "Use "+first+" as the default server?") {
		return nil
	}

	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settings.SetServerURL(first); err != nil {
		return err
	}
	if err := settings.Save(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	p.PrintSuccess("Default server saved", ui.Detail{Key: "URL", Value: first})
	return nil
}

// catalogForCommand loads the catalog for a one-shot command. Settings
// problems are not fatal here; the embedded catalog still works.
func catalogForCommand() (*catalog.Catalog, error) {
	settings, err := config.Load()
	if err != nil {
		settings = nil
	}
	return loadCatalog(settings)
}
