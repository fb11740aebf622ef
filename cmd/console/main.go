package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"traceguard/internal/api"
	"traceguard/internal/console"
	"traceguard/internal/domain"
	"traceguard/internal/fingerprint"
	"traceguard/internal/mapview"
	"traceguard/internal/platform/config"
	"traceguard/internal/platform/logger"
	"traceguard/internal/session"
)

// main runs the operator console as a small REPL. All behavior lives in
// internal/console; this file only parses commands and prints state.
func main() {
	cfg := config.ConsoleFromEnv()
	log := logger.New()

	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		var err error
		sessionPath, err = session.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot resolve session path:", err)
			os.Exit(1)
		}
	}
	sess := session.NewFileStore(sessionPath)

	fp := fingerprint.New()
	client := api.NewClient(cfg.APIBaseURL, sess, api.WithUserAgent(fp.UserAgent()))

	adapter := mapview.NewAdapter(func() mapview.Surface {
		return mapview.NewTerminalSurface(os.Stdout)
	})
	adapter.Mount()
	defer adapter.Unmount()

	c := console.New(client, sess, fp, adapter, log,
		console.WithDebounce(cfg.Debounce),
		console.OnSearchError(func(err error) {
			fmt.Println("search failed:", err)
		}))

	fmt.Println("traceguard console, api =", cfg.APIBaseURL)
	if c.Authenticated() {
		fmt.Println("session token found; run 'refresh' to continue or 'login' to start over")
	} else {
		fmt.Println("not logged in; run 'login <email>'")
	}

	repl(c)
}

func repl(c *console.Console) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "login":
			if len(args) != 1 {
				fmt.Println("usage: login <email>")
				continue
			}
			password, err := readPassword("password: ")
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := c.Login(ctx, args[0], password); err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			fmt.Println("logged in as", c.Email())
			if err := c.Refresh(ctx); err != nil {
				fmt.Println("refresh failed:", err)
				continue
			}
			printSummary(c.Summary())
			printDevices(c.Devices())
		case "passwd":
			oldPassword, err := readPassword("old password: ")
			if err != nil {
				fmt.Println(err)
				continue
			}
			newPassword, err := readPassword("new password: ")
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := c.ChangePassword(ctx, oldPassword, newPassword); err != nil {
				fmt.Println("password change failed:", err)
				continue
			}
			fmt.Println("password changed; fresh token stored")
		case "logout":
			if err := c.Logout(); err != nil {
				fmt.Println("logout:", err)
			}
			fmt.Println("logged out")
		case "refresh":
			if err := c.Refresh(ctx); err != nil {
				fmt.Println("refresh failed:", err)
				continue
			}
			printSummary(c.Summary())
			printDevices(c.Devices())
		case "list":
			printDevices(c.Devices())
		case "search":
			c.Search.SetText(strings.Join(args, " "))
			fmt.Println("searching; run 'list' to see results")
		case "since", "until":
			if len(args) != 1 {
				fmt.Printf("usage: %s <YYYY-MM-DD>\n", cmd)
				continue
			}
			day, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
			if err != nil {
				fmt.Println("bad date:", err)
				continue
			}
			if cmd == "since" {
				c.Search.SetSince(day)
			} else {
				c.Search.SetUntil(day)
			}
			fmt.Println("filtering; run 'list' to see results")
		case "dates":
			c.Search.ClearDates()
			fmt.Println("date filter cleared; run 'list' to see results")
		case "select":
			if len(args) != 1 {
				fmt.Println("usage: select <device-id>")
				continue
			}
			if !c.SelectByID(ctx, args[0]) {
				fmt.Println("unknown device id; run 'list' first")
			}
		case "deselect":
			c.Selection.Deselect()
		case "logs":
			printLogs(c.Selection.Logs())
		case "choose":
			if len(args) != 1 {
				fmt.Println("usage: choose <log-id>")
				continue
			}
			c.Selection.ChooseLog(args[0])
		case "status":
			printStatus(c)
		default:
			fmt.Println("unknown command; try 'help'")
		}
	}
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func printHelp() {
	fmt.Print(`commands:
  login <email>        authenticate this device
  passwd               change the account password
  logout               clear the local session
  refresh              reload summary and device list
  list                 print the cached device list
  search [text]        filter devices by id, name, or model
  since <YYYY-MM-DD>   only devices seen on or after the date
  until <YYYY-MM-DD>   only devices seen on or before the date
  dates                clear the date filter
  select <device-id>   select a device and load its history
  logs                 print the selected device's history
  choose <log-id>      focus the map on one history entry
  deselect             clear the selection
  status               print selection state
  quit
`)
}

func printSummary(s domain.Summary) {
	fmt.Printf("fleet: %d total, %d online, %d offline\n", s.Total, s.Online, s.Offline)
}

func printDevices(devices []domain.Device) {
	if len(devices) == 0 {
		fmt.Println("no devices")
		return
	}
	for _, d := range devices {
		lastSeen := "never"
		if d.LastSeen != nil {
			lastSeen = d.LastSeen.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%-12s %-10s %-24s %-12s last seen %s\n",
			d.DeviceID, d.Status, d.DeviceName, d.Model, lastSeen)
	}
}

func printLogs(logs []domain.LocationLog) {
	if len(logs) == 0 {
		fmt.Println("no location history")
		return
	}
	for _, l := range logs {
		line := fmt.Sprintf("%-38s %s (%.5f, %.5f)",
			l.ID, l.Timestamp.Local().Format("2006-01-02 15:04"), l.Lat, l.Lng)
		if l.Address != "" {
			line += "  " + l.Address
		}
		fmt.Println(line)
	}
}

func printStatus(c *console.Console) {
	fmt.Println("phase:", c.Selection.Phase())
	if device, ok := c.Selection.Device(); ok {
		fmt.Println("device:", device.DeviceID, device.DeviceName)
	}
	if msg := c.Selection.ErrMessage(); msg != "" {
		fmt.Println("error:", msg)
	}
}
