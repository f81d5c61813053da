package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"krushisetu/internal/apply"
	"krushisetu/internal/requirement"
)

// userError carries the one-line message shown to the applicant and keeps the cause.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func fail(log logrus.FieldLogger, err error) error {
	log.WithError(err).Warn("command failed")
	return &userError{msg: apply.UserMessage(err), err: err}
}

var subsidyFlag = &cli.StringFlag{
	Name:     "subsidy",
	Aliases:  []string{"s"},
	Usage:    "Subsidy id",
	Required: true,
}

var requirementsCommand = &cli.Command{
	Name:  "requirements",
	Usage: "Show the documents a subsidy requires and which are still missing",
	Flags: []cli.Flag{subsidyFlag},
	Action: func(c *cli.Context) error {
		client, cfg, log, err := newClient(c)
		if err != nil {
			return err
		}
		opts, err := cfg.sessionOptions(c, log)
		if err != nil {
			return err
		}
		session, err := apply.Open(c.Context, client, c.String("subsidy"), opts)
		if err != nil {
			return fail(log, err)
		}
		defer session.Close()

		d := session.Draft()
		present := make(map[string]bool)
		for _, r := range d.Documents() {
			present[r.Type] = true
		}

		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\n", d.Subsidy().Title)
		for _, req := range d.Required() {
			status := "missing"
			if present[req.Type] {
				status = "uploaded"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", req.Type, req.Label, status)
		}
		if len(d.Required()) == 0 {
			fmt.Fprintln(w, "no documents required")
		}
		return w.Flush()
	},
}

var subsidiesCommand = &cli.Command{
	Name:  "subsidies",
	Usage: "List the subsidies open for applications",
	Action: func(c *cli.Context) error {
		client, _, log, err := newClient(c)
		if err != nil {
			return err
		}
		subsidies, err := client.ListSubsidies(c.Context)
		if err != nil {
			return fail(log, err)
		}
		w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPROVIDER\tDOCUMENTS")
		for _, s := range subsidies {
			docs := "?"
			if set, err := requirement.Resolve(s.DocumentsRequired); err == nil {
				docs = strconv.Itoa(len(set))
			} else {
				log.WithError(err).WithField("subsidy_id", s.ID).Warn("unreadable document requirements")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Provider, docs)
		}
		return w.Flush()
	},
}

var documentsCommand = &cli.Command{
	Name:  "documents",
	Usage: "Manage uploaded documents",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List uploaded documents",
			Action: func(c *cli.Context) error {
				client, _, log, err := newClient(c)
				if err != nil {
					return err
				}
				docs, err := client.ListDocuments(c.Context)
				if err != nil {
					return fail(log, err)
				}
				w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTYPE\tNUMBER\tFILE\tUPLOADED")
				for _, d := range docs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Type, d.Number, d.Filename, d.UploadedAt.Local().Format("2006-01-02 15:04"))
				}
				return w.Flush()
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete an uploaded document",
			ArgsUsage: "ID",
			Action: func(c *cli.Context) error {
				id := c.Args().First()
				if id == "" {
					return errors.New("document id is required")
				}
				client, _, log, err := newClient(c)
				if err != nil {
					return err
				}
				if err := client.DeleteDocument(c.Context, id); err != nil {
					return fail(log, err)
				}
				fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
				return nil
			},
		},
	},
}

var submitCommand = &cli.Command{
	Name:  "submit",
	Usage: "Stage documents, upload them and submit an application",
	Flags: []cli.Flag{
		subsidyFlag,
		&cli.StringSliceFlag{
			Name:    "doc",
			Aliases: []string{"d"},
			Usage:   "Document to stage as type=number@path (repeatable)",
		},
		&cli.StringFlag{
			Name:  "form",
			Usage: "JSON file with form fields; overrides the profile prefill",
		},
		&cli.StringFlag{
			Name:  "policy",
			Usage: "Bulk upload failure policy: strict or settle (overrides RECONCILE_POLICY)",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "Max parallel uploads, 0 for all at once (overrides UPLOAD_CONCURRENCY)",
		},
	},
	Action: func(c *cli.Context) error {
		client, cfg, log, err := newClient(c)
		if err != nil {
			return err
		}
		opts, err := cfg.sessionOptions(c, log)
		if err != nil {
			return err
		}

		docs := make([]apply.Candidate, 0, len(c.StringSlice("doc")))
		for _, arg := range c.StringSlice("doc") {
			cand, err := readCandidate(arg, cfg.MaxFileBytes)
			var verr *apply.ValidationError
			if errors.As(err, &verr) {
				return fail(log, err)
			}
			if err != nil {
				return err
			}
			docs = append(docs, cand)
		}

		session, err := apply.Open(c.Context, client, c.String("subsidy"), opts)
		if err != nil {
			return fail(log, err)
		}
		defer session.Close()
		d := session.Draft()

		if path := c.String("form"); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read form: %w", err)
			}
			// decoding over the prefill keeps fields the file leaves out
			if err := json.Unmarshal(raw, &d.Form); err != nil {
				return fmt.Errorf("decode form %s: %w", path, err)
			}
		}

		persisted := make(map[string]bool)
		for _, r := range d.Persisted() {
			persisted[r.Type] = true
		}
		for _, cand := range docs {
			// a rerun after a failed upload finds part of the batch on the server already
			if persisted[cand.Type] {
				fmt.Fprintf(c.App.Writer, "%s already uploaded, keeping the stored document\n", cand.Type)
				continue
			}
			if _, err := d.Stage(cand); err != nil {
				return fail(log, fmt.Errorf("%s: %w", cand.Type, err))
			}
		}

		app, err := session.Submit(c.Context)
		if err != nil {
			return fail(log, err)
		}
		fmt.Fprintf(c.App.Writer, "submitted application %s with %d documents\n", app.ID, len(app.DocumentIDs))
		return nil
	},
}

// readCandidate parses "type=number@path" and loads the file. A file larger than maxBytes is
// rejected from its size alone so it is never read into memory.
func readCandidate(arg string, maxBytes int64) (apply.Candidate, error) {
	docType, rest, ok := strings.Cut(arg, "=")
	if !ok {
		return apply.Candidate{}, fmt.Errorf("document %q: want type=number@path", arg)
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return apply.Candidate{}, fmt.Errorf("document %q: want type=number@path", arg)
	}
	number, path := rest[:at], rest[at+1:]

	st, err := os.Stat(path)
	if err != nil {
		return apply.Candidate{}, fmt.Errorf("read document: %w", err)
	}
	if st.IsDir() {
		return apply.Candidate{}, fmt.Errorf("read document: %s is a directory", path)
	}
	if maxBytes > 0 && st.Size() > maxBytes {
		return apply.Candidate{}, fmt.Errorf("%s: %w", strings.TrimSpace(docType), &apply.ValidationError{
			Fields: map[string]string{"file": fmt.Sprintf("file must be %d MB or smaller", maxBytes>>20)},
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return apply.Candidate{}, fmt.Errorf("read document: %w", err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return apply.Candidate{
		Type:   strings.TrimSpace(docType),
		Number: strings.TrimSpace(number),
		File: &apply.File{
			Name:        filepath.Base(path),
			ContentType: ct,
			Data:        data,
		},
	}, nil
}
