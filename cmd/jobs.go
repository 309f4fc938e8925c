package cmd

import (
	"fmt"
	"os"

	"stockpredictor/database"
	"stockpredictor/services"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var fetchHistoryCmd = &cobra.Command{
	Use:   "fetch-history",
	Short: "Refresh the last year of history for every stored stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := services.App.Refresher.RefreshAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("updated %d, skipped %d, failed %d\n", res.Updated, res.Skipped, res.Failed)
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train [TICKER]",
	Short: "Train and save the LSTM network of one stock, or of every stock",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			n, err := services.App.Forecast.TrainAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("trained %d networks\n", n)
			return nil
		}

		a, err := services.App.Forecast.TrainLSTM(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		log.Info().Str("ticker", a.Ticker).Int("samples", a.Samples).Float64("loss", a.Loss).Msg("LSTM trained")
		fmt.Printf("trained %s on %d windows, final loss %.6f\n", a.Ticker, a.Samples, a.Loss)
		return nil
	},
}

var importStocksCmd = &cobra.Command{
	Use:   "import-stocks FILE",
	Short: "Insert or update stocks from a CSV with ticker, company_name and sector columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer file.Close()

		res, err := services.ImportStocks(cmd.Context(), database.Database.Db, file)
		if err != nil {
			return err
		}
		fmt.Printf("inserted %d, updated %d, skipped %d\n", res.Inserted, res.Updated, res.Skipped)
		return nil
	},
}
