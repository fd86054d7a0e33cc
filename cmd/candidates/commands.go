package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"candidate-tracker/internal/auth"
	"candidate-tracker/internal/domain"
	"candidate-tracker/internal/secrets"
	"candidate-tracker/internal/tracker"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"init", "create the data directory, database and default admin", cmdInit},
		{"login", "check credentials [-remember to store them in the keychain]", cmdLogin},
		{"forget", "remove the remembered login", cmdForget},
		{"add", "add a candidate", cmdAdd},
		{"list", "list all candidates", cmdList},
		{"search", "search candidates", cmdSearch},
		{"show", "show one candidate: show ID", cmdShow},
		{"set-status", "change status: set-status ID STATUS", cmdSetStatus},
		{"set-priority", "change priority: set-priority ID PRIORITY", cmdSetPriority},
		{"edit", "edit fields of a candidate: edit -id ID [field flags]", cmdEdit},
		{"delete", "delete a candidate (admin): delete ID", cmdDelete},
		{"stats", "show counts per status", cmdStats},
		{"export", "export -format csv|xlsx|bundle -o PATH", cmdExport},
		{"report", "write a PDF for one candidate: report -id ID -o PATH", cmdReport},
		{"import", "import candidates from an XLSX file: import PATH", cmdImport},
		{"useradd", "create an account (admin)", cmdUserAdd},
		{"users", "list accounts (admin)", cmdUsers},
		{"passwd", "change your password", cmdPasswd},
		{"sources", "list suggested candidate sources", cmdSources},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func newFlags(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.log.Out)
	return fs
}

// session logs in with -user/-password, falling back to the keychain.
func (a *app) session(ctx context.Context) (auth.Session, error) {
	user, pw := a.user, a.password
	if pw == "" {
		u, p, err := secrets.RecallLogin(a.dataDir, user)
		if err != nil {
			return auth.Session{}, errors.New("no password given and no remembered login (use -password, or login -remember)")
		}
		user, pw = u, p
	}
	if user == "" {
		return auth.Session{}, errors.New("-user is required")
	}
	return a.tr.Login(ctx, user, pw)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid candidate id %q", s)
	}
	return id, nil
}

func oneArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected %s", what)
	}
	return fs.Arg(0), nil
}

func cmdInit(_ context.Context, a *app, _ []string) error {
	fmt.Fprintf(a.out, "data directory: %s\n", a.dataDir)
	fmt.Fprintf(a.out, "database:       %s\n", a.cfg.DBPath())
	fmt.Fprintf(a.out, "attachments:    %s\n", a.cfg.AttachmentsPath())
	fmt.Fprintf(a.out, "photos:         %s\n", a.cfg.PhotosPath())
	return nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "login")
	remember := fs.Bool("remember", false, "store the login in the OS keychain")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.password == "" && *remember {
		return errors.New("-password is required with -remember")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if *remember {
		if err := secrets.RememberLogin(a.dataDir, sess.Username, a.password); err != nil {
			return fmt.Errorf("remember login: %w", err)
		}
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", sess.Username, sess.Role)
	return nil
}

func cmdForget(_ context.Context, a *app, _ []string) error {
	if err := secrets.ForgetLogin(a.dataDir, a.user); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "remembered login removed")
	return nil
}

// candidateFlags binds the editable candidate fields to fs.
type candidateFlags struct {
	name, position, email, phone, date string
	status, priority, notes, source    string
	resume, photo                      string
	attach                             []string
}

func (cf *candidateFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&cf.name, "name", "", "full name")
	fs.StringVar(&cf.position, "position", "", "position applied for")
	fs.StringVar(&cf.email, "email", "", "email address")
	fs.StringVar(&cf.phone, "phone", "", "phone number")
	fs.StringVar(&cf.date, "date", "", "application date (YYYY-MM-DD)")
	fs.StringVar(&cf.status, "status", "", "Pending, Interview, Accepted or Rejected")
	fs.StringVar(&cf.priority, "priority", "", "Low, Medium, High or Urgent")
	fs.StringVar(&cf.notes, "notes", "", "free-form notes")
	fs.StringVar(&cf.source, "source", "", "where the candidate came from")
	fs.StringVar(&cf.resume, "resume", "", "resume file to copy in")
	fs.StringVar(&cf.photo, "photo", "", "photo file to copy in")
	fs.Func("attach", "attachment file to copy in (repeatable)", func(s string) error {
		cf.attach = append(cf.attach, s)
		return nil
	})
}

func (cf *candidateFlags) files() tracker.FileInput {
	return tracker.FileInput{Resume: cf.resume, Photo: cf.photo, Attachments: cf.attach}
}

// apply copies every flag that was set on the command line onto c.
func (cf *candidateFlags) apply(fs *flag.FlagSet, c *domain.Candidate) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			c.FullName = cf.name
		case "position":
			c.Position = cf.position
		case "email":
			c.Email = cf.email
		case "phone":
			c.Phone = cf.phone
		case "date":
			c.AppliedOn = cf.date
		case "status":
			c.Status = domain.Status(cf.status)
		case "priority":
			c.Priority = domain.Priority(cf.priority)
		case "notes":
			c.Notes = cf.notes
		case "source":
			c.Source = cf.source
		}
	})
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "add")
	var cf candidateFlags
	cf.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}

	c := domain.Candidate{AppliedOn: time.Now().Format(domain.DateLayout)}
	cf.apply(fs, &c)
	c, err = a.tr.AddCandidate(ctx, sess, c)
	if err != nil {
		return err
	}
	if _, err := a.tr.AttachFiles(ctx, sess, c.ID, cf.files()); err != nil {
		return fmt.Errorf("candidate %d added but files were not stored: %w", c.ID, err)
	}
	fmt.Fprintf(a.out, "added candidate %d\n", c.ID)
	return nil
}

func cmdEdit(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "edit")
	id := fs.Int64("id", 0, "candidate id")
	var cf candidateFlags
	cf.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}

	c, err := a.tr.GetCandidate(ctx, sess, *id)
	if err != nil {
		return err
	}
	cf.apply(fs, &c)
	if err := a.tr.UpdateCandidate(ctx, sess, c); err != nil {
		return err
	}
	if _, err := a.tr.AttachFiles(ctx, sess, c.ID, cf.files()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "updated candidate %d\n", c.ID)
	return nil
}

func cmdList(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	cands, err := a.tr.ListCandidates(ctx, sess)
	if err != nil {
		return err
	}
	return a.printTable(cands)
}

func filterFlags(fs *flag.FlagSet) *domain.Filter {
	var f domain.Filter
	fs.StringVar(&f.Name, "name", "", "name contains")
	fs.StringVar(&f.Position, "position", "", "position contains")
	fs.StringVar(&f.Email, "email", "", "email contains")
	fs.Func("status", "exact status", func(s string) error {
		st, err := domain.ParseStatus(s)
		f.Status = st
		return err
	})
	fs.Func("priority", "exact priority", func(s string) error {
		p, err := domain.ParsePriority(s)
		f.Priority = p
		return err
	})
	fs.StringVar(&f.Source, "source", "", "exact source")
	return &f
}

func cmdSearch(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "search")
	f := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	cands, err := a.tr.SearchCandidates(ctx, sess, *f)
	if err != nil {
		return err
	}
	return a.printTable(cands)
}

func (a *app) printTable(cands []domain.Candidate) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tEMAIL\tDATE\tSTATUS\tPRIORITY\tSOURCE")
	for _, c := range cands {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.FullName, c.Position, c.Email, c.AppliedOn, c.Status, c.Priority, c.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d candidate(s)\n", len(cands))
	return nil
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	arg, err := oneArg(fs, "a candidate id")
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	c, err := a.tr.GetCandidate(ctx, sess, id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, row := range [][2]string{
		{"ID", strconv.FormatInt(c.ID, 10)},
		{"Name", c.FullName},
		{"Position", c.Position},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Applied on", c.AppliedOn},
		{"Status", string(c.Status)},
		{"Priority", string(c.Priority)},
		{"Source", c.Source},
		{"Resume", c.ResumePath},
		{"Attachments", strings.Join(c.Attachments, ", ")},
		{"Photo", c.PhotoPath},
		{"Created", c.CreatedAt.Local().Format("2006-01-02 15:04")},
		{"Notes", c.Notes},
	} {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func cmdSetStatus(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("expected ID STATUS")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	st, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.tr.UpdateStatus(ctx, sess, id, st); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "candidate %d is now %s\n", id, st)
	return nil
}

func cmdSetPriority(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("expected ID PRIORITY")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	p, err := domain.ParsePriority(args[1])
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.tr.UpdatePriority(ctx, sess, id, p); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "candidate %d priority is now %s\n", id, p)
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("expected a candidate id")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.tr.DeleteCandidate(ctx, sess, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted candidate %d\n", id)
	return nil
}

func cmdStats(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	s, err := a.tr.Stats(ctx, sess)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
	for _, st := range domain.Statuses {
		fmt.Fprintf(tw, "%s:\t%d\n", st, s.Count(st))
	}
	fmt.Fprintf(tw, "This month:\t%d\n", s.ThisMonth)
	return tw.Flush()
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "export")
	format := fs.String("format", "csv", "csv, xlsx or bundle")
	outPath := fs.String("o", "", "output file (directory for bundle)")
	f := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		return errors.New("-o is required")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}

	if strings.EqualFold(*format, "bundle") {
		paths, err := a.tr.ExportBundle(ctx, sess, *outPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "wrote %d files to %s\n", len(paths), *outPath)
		return nil
	}
	n, err := a.tr.Export(ctx, sess, tracker.Format(*format), *outPath, *f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %d candidate(s) to %s\n", n, *outPath)
	return nil
}

func cmdReport(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "report")
	id := fs.Int64("id", 0, "candidate id")
	outPath := fs.String("o", "", "output PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 || *outPath == "" {
		return errors.New("-id and -o are required")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.tr.ExportCandidatePDF(ctx, sess, *id, *outPath); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", *outPath)
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneArg(fs, "an .xlsx path")
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	res, err := a.tr.ImportXLSX(ctx, sess, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "imported %d candidate(s), skipped %d\n", res.Added, len(res.Skipped))
	for _, s := range res.Skipped {
		fmt.Fprintf(a.out, "  %v\n", s)
	}
	return nil
}

func cmdUserAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "useradd")
	username := fs.String("username", "", "new account name")
	password := fs.String("new-password", "", "new account password")
	role := fs.String("role", string(domain.RoleUser), "admin or user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	r, err := domain.ParseRole(*role)
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	u, err := a.tr.CreateUser(ctx, sess, *username, *password, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %s (%s)\n", u.Username, u.Role)
	return nil
}

func cmdUsers(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	users, err := a.tr.ListUsers(ctx, sess)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
	}
	return tw.Flush()
}

func cmdPasswd(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "passwd")
	next := fs.String("new", "", "new password")
	confirm := fs.String("confirm", "", "new password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	current := a.password
	if current == "" {
		if _, pw, err := secrets.RecallLogin(a.dataDir, sess.Username); err == nil {
			current = pw
		}
	}
	if err := a.tr.ChangePassword(ctx, sess, current, *next, *confirm); err != nil {
		return err
	}
	// a remembered login would now be stale
	if _, _, err := secrets.RecallLogin(a.dataDir, sess.Username); err == nil {
		if err := secrets.RememberLogin(a.dataDir, sess.Username, *next); err != nil {
			a.log.WithError(err).Warn("could not update remembered login")
		}
	}
	fmt.Fprintln(a.out, "password changed")
	return nil
}

func cmdSources(_ context.Context, a *app, _ []string) error {
	for _, s := range a.tr.Sources() {
		fmt.Fprintln(a.out, s)
	}
	return nil
}
