package main

import (
	"github.com/spf13/cobra"

	"github.com/yingtu35/link-verifier/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	site       string
	maxDepth   int
	policy     string
	driver     string
	dedupe     bool
}

var rootCmd = &cobra.Command{
	Use:   "link-verifier",
	Short: "Check every link on a website and report the broken ones",
	Long: "link-verifier walks a site in a real browser, follows each link to its final URL\n" +
		"and checks it with a HEAD request. Settings come from the config file, LINKCHECK_*\n" +
		"environment variables and flags, in increasing precedence.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runVerify,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&rootFlags.configPath, "config", "c", config.DefaultPath, "Path to the settings file (JSON or YAML)")
	f.StringVar(&rootFlags.site, "site", "", "Start URL, overrides the config file")
	f.IntVar(&rootFlags.maxDepth, "max-depth", 0, "Maximum link depth to follow")
	f.StringVar(&rootFlags.policy, "policy", "", "Which links to report and follow: healthy or unhealthy")
	f.StringVar(&rootFlags.driver, "driver", "", "Browser backend: playwright, chromedp, rod or static")
	f.BoolVar(&rootFlags.dedupe, "dedupe", false, "Visit each page at most once")
	rootCmd.Version = version
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("site") {
		cfg.Site = rootFlags.site
	}
	if f.Changed("max-depth") {
		cfg.MaxDepth = rootFlags.maxDepth
	}
	if f.Changed("policy") {
		cfg.Policy = rootFlags.policy
	}
	if f.Changed("driver") {
		cfg.Driver = rootFlags.driver
	}
	if f.Changed("dedupe") {
		cfg.Dedupe = rootFlags.dedupe
	}
}
