// cmd/root.go - Root command implementation
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/mvtfilter/internal/config"
	"github.com/valpere/mvtfilter/internal/run"
)

var cfgFile string

// rootCmd represents the base command: mvtfilter rewrites a PMTiles
// archive's MVT tiles by applying a JSON S-expression filter to each
// feature and tag.
var rootCmd = &cobra.Command{
	Use:   "mvtfilter INPUT OUTPUT",
	Short: "Rewrite a PMTiles archive's vector tiles through a feature/tag filter",
	Long: `mvtfilter rewrites every tile in a PMTiles v3 archive, dropping features
and tags that match a JSON S-expression filter applied within geographic
filter regions. The filter is optional; without one, every tile is
decoded and re-encoded unchanged.

The filter is a GeoJSON FeatureCollection whose features carry "layers"
properties mapping a layer name (or "*") to optional "feature" and "tag"
expressions. A feature expression that evaluates true drops the whole
feature; a tag expression that evaluates true for a given key drops that
one tag.

Examples:
  # Drop buildings of kind "industrial" worldwide
  mvtfilter in.pmtiles out.pmtiles -f filter.geojson

  # Also stamp new archive metadata
  mvtfilter in.pmtiles out.pmtiles -f filter.geojson -n "trimmed" -N "filtered extract"`,
	Version: "0.1.0",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		v.Set("input", args[0])
		v.Set("output", args[1])
		bindFlags(cmd, v)

		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		return run.Execute(cmd.Context(), cfg)
	},
}

// Execute runs the root command and exits with status 1 on error. This is
// called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mvtfilter.yaml)")

	rootCmd.Flags().StringP("filter", "f", "", "path to the GeoJSON filter definition (optional; omit to pass every tile through unchanged)")
	rootCmd.Flags().StringP("name", "n", "", "override the output archive's metadata name")
	rootCmd.Flags().StringP("description", "N", "", "override the output archive's metadata description")
	rootCmd.Flags().StringP("attribution", "A", "", "override the output archive's metadata attribution")
	rootCmd.Flags().Int("concurrency", 0, "reader/transformer goroutine count (default: runtime.NumCPU())")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	v.BindPFlag("filter", cmd.Flags().Lookup("filter"))
	v.BindPFlag("name", cmd.Flags().Lookup("name"))
	v.BindPFlag("description", cmd.Flags().Lookup("description"))
	v.BindPFlag("attribution", cmd.Flags().Lookup("attribution"))
	v.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
		v.BindPFlag("concurrency", f)
	}
	v.SetEnvPrefix("MVTFILTER")
	v.AutomaticEnv()
}

// initConfig reads a config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mvtfilter")
	}

	viper.SetEnvPrefix("MVTFILTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
