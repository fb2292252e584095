package launch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// lookupSchemeHandler asks xdg-mime for the desktop entry handling scheme
// and returns its Exec command line.
func lookupSchemeHandler(ctx context.Context, scheme string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "xdg-mime", "query", "default", "x-scheme-handler/"+scheme).Output()
	if err != nil {
		return nil, fmt.Errorf("xdg-mime: %w", err)
	}
	entry := strings.TrimSpace(string(out))
	if entry == "" {
		return nil, fmt.Errorf("no handler for %s", scheme)
	}

	for _, dir := range applicationDirs() {
		f, err := os.Open(filepath.Join(dir, entry))
		if err != nil {
			continue
		}
		argv, err := parseDesktopExec(bufio.NewScanner(f))
		f.Close()
		if err == nil {
			return argv, nil
		}
	}
	return nil, fmt.Errorf("desktop entry %s not found", entry)
}

func applicationDirs() []string {
	var dirs []string
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, "applications"))
	} else if h, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(h, ".local", "share", "applications"))
	}
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(dataDirs, ":") {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return dirs
}

// parseDesktopExec returns the Exec= line of the [Desktop Entry] group,
// split into arguments. Field codes are left in place.
func parseDesktopExec(sc *bufio.Scanner) ([]string, error) {
	inEntry := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			inEntry = line == "[Desktop Entry]"
			continue
		}
		if !inEntry {
			continue
		}
		if value, ok := strings.CutPrefix(line, "Exec="); ok {
			argv := splitExec(value)
			if len(argv) == 0 {
				return nil, fmt.Errorf("empty Exec line")
			}
			return argv, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no Exec line")
}

// splitExec splits an Exec value on spaces, honouring double quotes and
// backslash escapes inside them.
func splitExec(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		started bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
			started = true
		case r == ' ' && !quoted:
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

// expandFieldCodes substitutes url for %u/%U/%f/%F, drops the other field
// codes, and appends url when the command had no placeholder.
func expandFieldCodes(argv []string, url string) []string {
	out := make([]string, 0, len(argv)+1)
	used := false
	for _, arg := range argv {
		switch arg {
		case "%u", "%U", "%f", "%F":
			out = append(out, url)
			used = true
		case "%i", "%c", "%k", "%d", "%D", "%n", "%N", "%v", "%m":
		default:
			out = append(out, strings.ReplaceAll(arg, "%%", "%"))
		}
	}
	if !used {
		out = append(out, url)
	}
	return out
}
