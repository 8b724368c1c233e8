// Command authctl signs up, logs in and inspects the current session from a
// terminal. The token is kept in a cookie file between invocations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketplace_auth/internal/client"
	"marketplace_auth/internal/model"
	"marketplace_auth/internal/session"
)

const usage = `usage: authctl [-api URL] [-session FILE] <command> [flags]

commands:
  signup  -phone P -password P -name N -role consumer|worker [-license L] [-vehicle V] [-rc R]
  login   -phone P -password P
  whoami
  logout
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "authctl:", err)
		os.Exit(1)
	}
}

type app struct {
	api  *client.Client
	sess *session.Context
	out  io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	global := flag.NewFlagSet("authctl", flag.ContinueOnError)
	global.SetOutput(out)
	apiURL := global.String("api", envOr("AUTHCTL_API", "http://localhost:8080/api"), "API base URL")
	sessionPath := global.String("session", envOr("AUTHCTL_SESSION", defaultSessionPath()), "session cookie file")
	global.Usage = func() { fmt.Fprint(out, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	a := &app{api: client.New(*apiURL, nil), out: out}
	a.sess = session.New(session.NewFileCookieStore(*sessionPath), session.NavigatorFunc(func(path string) {
		fmt.Fprintf(out, "-> %s\n", path)
	}))
	a.sess.Restore()

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "signup":
		return a.signup(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "whoami":
		return a.whoami(ctx)
	case "logout":
		return a.sess.Logout()
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var req model.SignupRequest
	var role, vehicle, rc string
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.Password, "password", "", "password (min 8 characters)")
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&role, "role", string(model.RoleConsumer), "consumer or worker")
	fs.StringVar(&req.DrivingLicense, "license", "", "driving license (workers)")
	fs.StringVar(&vehicle, "vehicle", "", "vehicle number (workers, optional)")
	fs.StringVar(&rc, "rc", "", "vehicle registration certificate (workers, optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.Role = model.Role(role)
	if vehicle != "" {
		req.VehicleNumber = &vehicle
	}
	if rc != "" {
		req.VehicleRC = &rc
	}

	user, err := a.api.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created %s %s (%s)\n", user.Role, user.PhoneNumber, user.ID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	var req model.LoginRequest
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.api.Login(ctx, req)
	if err != nil {
		return err
	}
	if err := a.sess.Login(resp.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", resp.User.PhoneNumber, resp.User.Role)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	token, ok := a.sess.Token()
	if !ok {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}

	// The server is the authority; a token it rejects is dropped locally.
	me, err := a.api.Me(ctx, token)
	if client.IsStatus(err, http.StatusUnauthorized) {
		fmt.Fprintln(a.out, "session rejected by server")
		return a.sess.Logout()
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s (%s), expires %s\n",
		me.Role, me.Phone, me.UserID, time.Unix(me.Exp, 0).Format(time.RFC3339))
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".authctl-session.json"
	}
	return filepath.Join(dir, "marketplace_auth", "session.json")
}
