package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/quotes/internal/config"
	"github.com/vsinha/quotes/pkg/application/services/editor"
	"github.com/vsinha/quotes/pkg/domain/entities"
	"github.com/vsinha/quotes/pkg/domain/repositories"
	"github.com/vsinha/quotes/pkg/infrastructure/events"
	"github.com/vsinha/quotes/pkg/infrastructure/repositories/jsonfile"
	"github.com/vsinha/quotes/pkg/interfaces/cli/output"
)

// QuoteCommand runs one editor operation per invocation against the quote store
type QuoteCommand struct {
	settings config.Config
	repo     repositories.QuoteRepository
	out      io.Writer
	logger   *zap.Logger
	clock    func() time.Time
}

// NewQuoteCommand creates a new quotes command over repo
func NewQuoteCommand(settings config.Config, repo repositories.QuoteRepository, out io.Writer, logger *zap.Logger) *QuoteCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteCommand{
		settings: settings,
		repo:     repo,
		out:      out,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithClock overrides the time source, for tests
func (c *QuoteCommand) WithClock(clock func() time.Time) *QuoteCommand {
	c.clock = clock
	return c
}

type subcommand struct {
	name  string
	usage string
	run   func(c *QuoteCommand, s *editor.Session, args []string) error
}

var subcommands = []subcommand{
	{"new", "new [-po PO] [-notes TEXT]", (*QuoteCommand).runNew},
	{"list", "list", (*QuoteCommand).runList},
	{"show", "show [-id ID]", (*QuoteCommand).runShow},
	{"add", "add [-id ID] -part PN [-desc D] [-qty N] [-unit COST] [-list PRICE] [-source S] [-exempt true|false]", (*QuoteCommand).runAdd},
	{"edit", "edit [-id ID] -index N -part PN [-desc D] [-qty N] [-unit COST] [-list PRICE] [-source S] [-exempt true|false]", (*QuoteCommand).runEdit},
	{"delete", "delete [-id ID] -index N", (*QuoteCommand).runDelete},
	{"po", "po [-id ID] -value PO", (*QuoteCommand).runPO},
	{"notes", "notes [-id ID] -value TEXT", (*QuoteCommand).runNotes},
	{"suppliers", "suppliers [-id ID] [-set NAME=true ...]", (*QuoteCommand).runSuppliers},
	{"save-name", "save-name [-id ID]", (*QuoteCommand).runSaveName},
	{"import", "import -file PATH", (*QuoteCommand).runImport},
	{"export", "export [-id ID] [-out PATH]", (*QuoteCommand).runExport},
	{"remove", "remove -id ID", (*QuoteCommand).runRemove},
	{"print", "print [-id ID] [-out FILE.html]", (*QuoteCommand).runPrint},
	{"total", "total [-id ID]", (*QuoteCommand).runTotal},
}

// Execute runs the subcommand named by args[0]
func (c *QuoteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-help" || args[0] == "--help" {
		c.showHelp()
		return nil
	}

	for _, sc := range subcommands {
		if sc.name == args[0] {
			return sc.run(c, c.newSession(), args[1:])
		}
	}
	c.showHelp()
	return fmt.Errorf("unknown command %q", args[0])
}

func (c *QuoteCommand) newSession() *editor.Session {
	journal := events.NewInMemoryEventStore(c.logger)
	_ = journal.Subscribe(events.AllQuoteEvents, events.HandlerFunc(func(e events.Event) error {
		c.logger.Debug("quote changed",
			zap.String("event", e.Type()),
			zap.String("stream", e.StreamID()),
			zap.Int("version", e.Version()))
		return nil
	}))

	return editor.NewSession(c.repo,
		editor.WithClock(c.clock),
		editor.WithJournal(journal),
		editor.WithExporter(jsonfile.ExportQuote),
		editor.WithLogger(c.logger),
		editor.WithNamePrefix(c.settings.NamePrefix),
	)
}

func (c *QuoteCommand) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// openQuote makes quote id current; 0 selects the most recently created quote
func openQuote(s *editor.Session, id int64) error {
	if id == 0 {
		if !s.OpenMostRecent() {
			return fmt.Errorf("no saved quotes: %w", entities.ErrQuoteNotFound)
		}
		return nil
	}
	return s.Open(entities.QuoteID(id))
}

func (c *QuoteCommand) runNew(s *editor.Session, args []string) error {
	fs := c.flagSet("new")
	po := fs.String("po", "", "Purchase order number")
	notes := fs.String("notes", "", "Free-text notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := s.New()
	s.SetPONumber(*po)
	if err := s.SetNotes(*notes); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created quote %s (id: %d)\n", q.Name, q.ID)
	return nil
}

func (c *QuoteCommand) runList(s *editor.Session, args []string) error {
	if err := c.flagSet("list").Parse(args); err != nil {
		return err
	}
	output.WriteQuoteList(c.out, s.Quotes())
	return nil
}

func (c *QuoteCommand) runShow(s *editor.Session, args []string) error {
	fs := c.flagSet("show")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}
	doc, err := s.Document()
	if err != nil {
		return err
	}
	output.WriteQuoteTable(c.out, doc)
	return nil
}

// itemFlags registers the item form fields on fs
func itemFlags(fs *flag.FlagSet) (*editor.ItemInput, *string) {
	in := &editor.ItemInput{}
	fs.StringVar(&in.PartNumber, "part", "", "Part number")
	fs.StringVar(&in.Description, "desc", "", "Description")
	fs.StringVar(&in.Quantity, "qty", "1", "Quantity")
	fs.StringVar(&in.UnitCost, "unit", "0", "Unit cost")
	fs.StringVar(&in.ListPrice, "list", "0", "List price")
	fs.StringVar(&in.Source, "source", "", "Supplier")
	exempt := fs.String("exempt", "", "Tax exempt (true|false, default from supplier policy)")
	return in, exempt
}

func applyExempt(in *editor.ItemInput, raw string) error {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid -exempt value %q: %w", raw, err)
	}
	in.TaxExempt = &v
	return nil
}

func (c *QuoteCommand) warnCoercions(coerced editor.Coercions) {
	for _, field := range coerced.Fields() {
		fmt.Fprintf(c.out, "Warning: invalid %s, using default\n", field)
	}
}

func (c *QuoteCommand) runAdd(s *editor.Session, args []string) error {
	fs := c.flagSet("add")
	id := fs.Int64("id", 0, "Quote id (0 = start a new quote)")
	in, exempt := itemFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyExempt(in, *exempt); err != nil {
		return err
	}
	if *id != 0 {
		if err := s.Open(entities.QuoteID(*id)); err != nil {
			return err
		}
	}

	c.warnCoercions(s.AddItem(*in))
	if err := s.Save(); err != nil {
		return err
	}
	q := s.Current()
	fmt.Fprintf(c.out, "Added item %d to %s (id: %d)\n", len(q.Items)-1, q.Name, q.ID)
	return nil
}

func (c *QuoteCommand) runEdit(s *editor.Session, args []string) error {
	fs := c.flagSet("edit")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	index := fs.Int("index", -1, "Item index")
	in, exempt := itemFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyExempt(in, *exempt); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}

	coerced, err := s.EditItem(*index, *in)
	if err != nil {
		return err
	}
	c.warnCoercions(coerced)
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Updated item %d of %s\n", *index, s.Current().Name)
	return nil
}

func (c *QuoteCommand) runDelete(s *editor.Session, args []string) error {
	fs := c.flagSet("delete")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	index := fs.Int("index", -1, "Item index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}

	if !s.DeleteItem(*index) {
		return entities.ErrNoSelection
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted item %d of %s\n", *index, s.Current().Name)
	return nil
}

func (c *QuoteCommand) runPO(s *editor.Session, args []string) error {
	fs := c.flagSet("po")
	id := fs.Int64("id", 0, "Quote id (0 = start a new quote)")
	value := fs.String("value", "", "Purchase order number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id != 0 {
		if err := s.Open(entities.QuoteID(*id)); err != nil {
			return err
		}
	}

	s.SetPONumber(*value)
	if s.Current() == nil {
		return entities.ErrNoCurrentQuote
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Saved %s (id: %d)\n", s.Current().Name, s.Current().ID)
	return nil
}

func (c *QuoteCommand) runNotes(s *editor.Session, args []string) error {
	fs := c.flagSet("notes")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	value := fs.String("value", "", "Notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}
	if err := s.SetNotes(*value); err != nil {
		return err
	}
	return s.Save()
}

// policyFlag collects repeated -set NAME=BOOL values
type policyFlag map[string]bool

func (p policyFlag) String() string {
	parts := make([]string, 0, len(p))
	for name, exempt := range p {
		parts = append(parts, fmt.Sprintf("%s=%t", name, exempt))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (p policyFlag) Set(value string) error {
	i := strings.LastIndex(value, "=")
	if i <= 0 {
		return fmt.Errorf("expected NAME=true|false, got %q", value)
	}
	exempt, err := strconv.ParseBool(strings.TrimSpace(value[i+1:]))
	if err != nil {
		return fmt.Errorf("expected NAME=true|false, got %q", value)
	}
	p[entities.SupplierKey(value[:i])] = exempt
	return nil
}

func (c *QuoteCommand) runSuppliers(s *editor.Session, args []string) error {
	fs := c.flagSet("suppliers")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	updates := policyFlag{}
	fs.Var(updates, "set", "Supplier policy NAME=true|false (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}

	entries := s.Suppliers()
	if len(updates) == 0 {
		output.WriteSuppliers(c.out, entries)
		return nil
	}

	mapping := make(map[string]bool, len(entries))
	for _, e := range entries {
		mapping[e.Name] = e.TaxExempt
	}
	for name, exempt := range updates {
		if _, known := mapping[name]; !known {
			return fmt.Errorf("supplier %q is not used by this quote", name)
		}
		mapping[name] = exempt
	}

	if err := s.SetSupplierPolicy(mapping); err != nil {
		return err
	}
	output.WriteSuppliers(c.out, s.Suppliers())
	return nil
}

func (c *QuoteCommand) runSaveName(s *editor.Session, args []string) error {
	fs := c.flagSet("save-name")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, s.Current().Name)
	return nil
}

func (c *QuoteCommand) runImport(s *editor.Session, args []string) error {
	fs := c.flagSet("import")
	file := fs.String("file", "", "Quote JSON file to import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	payload, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	q, coercions, err := s.Import(payload)
	if err != nil {
		return err
	}
	for _, ic := range coercions {
		for _, field := range ic.Fields() {
			fmt.Fprintf(c.out, "Warning: item %d: invalid %s, using default\n", ic.Index+1, field)
		}
	}
	fmt.Fprintf(c.out, "Imported quote '%s' (id: %d)\n", q.Name, q.ID)
	return nil
}

func (c *QuoteCommand) runExport(s *editor.Session, args []string) error {
	fs := c.flagSet("export")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	out := fs.String("out", "", "Destination file (default: derived from the quote name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = s.SuggestedExportName()
	}
	if err := s.Export(path); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Exported to %s\n", path)
	return nil
}

func (c *QuoteCommand) runRemove(s *editor.Session, args []string) error {
	fs := c.flagSet("remove")
	id := fs.Int64("id", 0, "Quote id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("-id is required")
	}
	if err := s.DeleteFromStore(entities.QuoteID(*id)); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted quote %d\n", *id)
	return nil
}

func (c *QuoteCommand) runPrint(s *editor.Session, args []string) error {
	fs := c.flagSet("print")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	out := fs.String("out", "", "HTML file to write (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}
	doc, err := s.Document()
	if err != nil {
		return err
	}

	if *out == "" {
		return output.RenderQuoteHTML(c.out, doc)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *out, err)
	}
	if err := output.RenderQuoteHTML(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", *out, err)
	}
	fmt.Fprintf(c.out, "Wrote %s\n", *out)
	return nil
}

func (c *QuoteCommand) runTotal(s *editor.Session, args []string) error {
	fs := c.flagSet("total")
	id := fs.Int64("id", 0, "Quote id (0 = most recent)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := openQuote(s, *id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Total: %s\n", s.Total().Currency())
	return nil
}

// showHelp displays the help message
func (c *QuoteCommand) showHelp() {
	fmt.Fprintf(c.out, "quotes - Create and edit parts quotes\n\nUSAGE:\n")
	for _, sc := range subcommands {
		fmt.Fprintf(c.out, "    quotes %s\n", sc.usage)
	}
	fmt.Fprintf(c.out, `
An -id of 0 selects the most recently created quote; for add and po it
starts a new quote instead. Data lives in $QUOTES_DATA_DIR (default ~/.arcsoftware).
`)
}
