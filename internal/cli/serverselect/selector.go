package serverselect

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/employee-lifecycle/portal/internal/cli/userconfig"
)

const (
	// EnvServer overrides the selected server
	EnvServer = "LIFECYCLE_SERVER"

	// DefaultServerURL is the development backend
	DefaultServerURL = "http://localhost:8080"
)

// ResolveServer determines which server to use based on the following priority:
// 1. The --server flag (URL or alias)
// 2. The LIFECYCLE_SERVER environment variable (URL or alias)
// 3. The selected server in the user config
// 4. The only configured server
// 5. The local development backend
func ResolveServer(cfg *userconfig.UserConfig, flag string) (*userconfig.Server, error) {
	if flag != "" {
		return lookup(cfg, flag)
	}

	if env := os.Getenv(EnvServer); env != "" {
		return lookup(cfg, env)
	}

	if cfg.SelectedServer != "" {
		if server, ok := cfg.FindServer(cfg.SelectedServer); ok {
			return server, nil
		}
		// Selected server was removed from the config, fall through
	}

	if len(cfg.Servers) == 1 {
		return &cfg.Servers[0], nil
	}

	return &userconfig.Server{Alias: "local", URL: DefaultServerURL}, nil
}

// lookup accepts a configured alias or URL, or any ad-hoc absolute URL
func lookup(cfg *userconfig.UserConfig, urlOrAlias string) (*userconfig.Server, error) {
	if server, ok := cfg.FindServer(urlOrAlias); ok {
		return server, nil
	}

	adhoc := &userconfig.UserConfig{}
	server, err := adhoc.AddServer(urlOrAlias, urlOrAlias)
	if err != nil {
		return nil, fmt.Errorf("server '%s' is neither a configured alias nor a valid URL", urlOrAlias)
	}
	return server, nil
}

// GetServerByURLOrAlias finds a configured server by URL or alias
func GetServerByURLOrAlias(cfg *userconfig.UserConfig, urlOrAlias string) (*userconfig.Server, error) {
	server, ok := cfg.FindServer(urlOrAlias)
	if !ok {
		return nil, fmt.Errorf("server with URL or alias '%s' not found", urlOrAlias)
	}
	return server, nil
}

// PromptServerSelection shows an interactive prompt for the user to select a server
func PromptServerSelection(cfg *userconfig.UserConfig) (*userconfig.Server, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured. Run 'lifecycle add-server <alias> <url>' first")
	}

	type serverOption struct {
		Label  string
		Server *userconfig.Server
	}

	options := make([]serverOption, len(cfg.Servers))
	for i := range cfg.Servers {
		server := &cfg.Servers[i]
		options[i] = serverOption{
			Label:  fmt.Sprintf("%s (%s)", server.Alias, server.URL),
			Server: server,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a server",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server selection cancelled: %w", err)
	}

	return options[index].Server, nil
}
