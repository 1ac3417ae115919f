package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"astrografia/src/ephemeris"
	"astrografia/src/models"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the users and perspectives tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupCore(cmd)
		if err != nil {
			return err
		}
		defer c.Logger.Sync()

		db, err := setupDatabase(c)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "%s database is up to date\n", c.Config.Storage.DBType)
		return nil
	},
}

// -----------------------------------------------------------------------------

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "astrografia %s (%s)\n", version, runtime.Version())
	},
}

// -----------------------------------------------------------------------------

// birthFlags are the chart inputs shared by chart and interpret.
type birthFlags struct {
	ephemeris.RawBirthInput
	asJSON bool
}

func (b *birthFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&b.Date, "date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&b.Time, "time", "", "local birth time, HH:MM")
	f.StringVar(&b.Lat, "lat", "", "latitude in degrees, north positive")
	f.StringVar(&b.Lon, "lon", "", "longitude in degrees, east positive")
	f.StringVar(&b.TZ, "tz", "", "IANA timezone, e.g. America/Sao_Paulo")
	f.StringVar(&b.City, "city", "", "city label")
	f.StringVar(&b.Name, "name", "", "person's name")
	f.BoolVar(&b.asJSON, "json", false, "print JSON instead of formatted text")
}

// -----------------------------------------------------------------------------

var chartFlags birthFlags

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Compute a natal chart",
	Example: "  astrografia chart --date 1990-05-15 --time 10:30 --lat -23.5505 --lon -46.6333 " +
		"--tz America/Sao_Paulo --city 'São Paulo'",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupCore(cmd)
		if err != nil {
			return err
		}
		defer c.Logger.Sync()

		chart, err := computeChart(cmd, c, chartFlags.RawBirthInput)
		if err != nil {
			return err
		}
		if chartFlags.asJSON {
			return printJSON(cmd, chart)
		}
		return printMarkdown(cmd, chartMarkdown(chart))
	},
}

// -----------------------------------------------------------------------------

var interpretFlags birthFlags
var interpretTheme string

var interpretCmd = &cobra.Command{
	Use:   "interpret",
	Short: "Compute a chart and write a themed reading",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := setupCore(cmd)
		if err != nil {
			return err
		}
		defer c.Logger.Sync()

		interpreter, err := setupInterpreter(c)
		if err != nil {
			return err
		}
		chart, err := computeChart(cmd, c, interpretFlags.RawBirthInput)
		if err != nil {
			return err
		}
		reading, err := interpreter.InterpretChart(cmd.Context(), interpretFlags.Name, interpretTheme, chart)
		if err != nil {
			return err
		}
		if interpretFlags.asJSON {
			return printJSON(cmd, reading)
		}
		return printMarkdown(cmd, reading.Markdown)
	},
}

func init() {
	chartFlags.bind(chartCmd)
	interpretFlags.bind(interpretCmd)
	interpretCmd.Flags().StringVar(&interpretTheme, "theme", "love", "love, career, family, spirituality, mission or challenges")
}

// -----------------------------------------------------------------------------

func computeChart(cmd *cobra.Command, c *core, in ephemeris.RawBirthInput) (*models.MChart, error) {
	birth, err := ephemeris.ParseBirthData(in)
	if err != nil {
		return nil, err
	}
	return c.Facade.ComputeChart(cmd.Context(), birth)
}

// -----------------------------------------------------------------------------

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
