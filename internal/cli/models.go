package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tmarchal/scriba/internal/core/config"
	"github.com/tmarchal/scriba/internal/core/transcriber"
)

var modelsRemote bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and manage transcription models",
	Long: `List downloaded models or available models from remote.

By default, shows locally downloaded models.
Use -r/--remote to show models available for download.

Examples:
  scriba models
  scriba models -r
  scriba models download whisper-large-v3-turbo
  scriba models rm whisper-small`,
	RunE: runModels,
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download <model>",
	Short: "Download a transcription model",
	Long: `Download a whisper.cpp model for local speech-to-text.

Available models:
  whisper-tiny            (78MB) - Fastest, basic quality
  whisper-base           (148MB) - Good for quick drafts
  whisper-small          (488MB) - Balanced for most uses
  whisper-medium         (1.5GB) - Higher accuracy
  whisper-large-v3       (3.1GB) - Highest accuracy, slowest
  whisper-large-v3-turbo (1.6GB) - Best quality + fast (recommended)`,
	Args: cobra.ExactArgs(1),
	RunE: runModelsDownload,
}

var modelsRmCmd = &cobra.Command{
	Use:   "rm <model>",
	Short: "Remove a downloaded model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsRm,
}

func init() {
	modelsCmd.Flags().BoolVarP(&modelsRemote, "remote", "r", false, "list models available for download")
	modelsCmd.AddCommand(modelsDownloadCmd)
	modelsCmd.AddCommand(modelsRmCmd)
	rootCmd.AddCommand(modelsCmd)
}

func modelsManager() (*transcriber.Manager, string, error) {
	cfg := config.LoadOrDefault()
	dir := config.ExpandPath(cfg.ModelsDir)
	if dir == "" {
		var err error
		dir, err = transcriber.DefaultModelsDir()
		if err != nil {
			return nil, "", err
		}
	}
	return transcriber.NewManager(dir), dir, nil
}

func runModels(cmd *cobra.Command, args []string) error {
	mgr, dir, err := modelsManager()
	if err != nil {
		return err
	}

	if modelsRemote {
		fmt.Println("Available models (remote):")
		fmt.Println()
		for _, m := range transcriber.Models {
			downloaded := ""
			if mgr.IsDownloaded(m.Name) {
				downloaded = " [downloaded]"
			}
			fmt.Printf("  %-24s %8s%s\n", m.Name, transcriber.FormatBytes(m.Size), downloaded)
		}
		fmt.Println()
		fmt.Println("Download a model:")
		fmt.Println("  scriba models download <model-name>")
		return nil
	}

	downloaded := mgr.ListDownloaded()
	if len(downloaded) == 0 {
		fmt.Println("No models downloaded.")
		fmt.Println()
		fmt.Println("Download a model:")
		fmt.Println("  scriba models download whisper-large-v3-turbo")
		fmt.Println()
		fmt.Println("See available models:")
		fmt.Println("  scriba models -r")
		return nil
	}

	fmt.Println("Downloaded models:")
	fmt.Println()
	for _, name := range downloaded {
		if m, err := transcriber.GetModel(name); err == nil {
			fmt.Printf("  %-24s %8s\n", m.Name, transcriber.FormatBytes(m.Size))
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	fmt.Println()
	fmt.Printf("Models directory: %s\n", dir)
	return nil
}

func runModelsDownload(cmd *cobra.Command, args []string) error {
	name := args[0]

	model, err := transcriber.GetModel(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fmt.Println("Available models:")
		for _, m := range transcriber.Models {
			fmt.Printf("  %-24s (%s)\n", m.Name, transcriber.FormatBytes(m.Size))
		}
		os.Exit(1)
	}

	mgr, _, err := modelsManager()
	if err != nil {
		return err
	}

	if mgr.IsDownloaded(name) {
		path, _ := mgr.Path(name)
		fmt.Printf("Model '%s' is already downloaded.\n", name)
		fmt.Printf("Location: %s\n", path)
		return nil
	}

	fmt.Printf("\nDownloading %s (%s)\n", model.Name, transcriber.FormatBytes(model.Size))

	lastPct := -1
	err = mgr.Download(cmd.Context(), name, func(downloaded, total int64) {
		if total <= 0 {
			return
		}
		pct := int(downloaded * 100 / total)
		if pct != lastPct {
			lastPct = pct
			fmt.Printf("\r  %3d%%  %s / %s", pct, transcriber.FormatBytes(downloaded), transcriber.FormatBytes(total))
		}
	})
	fmt.Println()
	if err != nil {
		return err
	}

	path, _ := mgr.Path(name)
	fmt.Println("Download complete!")
	fmt.Printf("Location: %s\n", path)
	return nil
}

func runModelsRm(cmd *cobra.Command, args []string) error {
	mgr, _, err := modelsManager()
	if err != nil {
		return err
	}
	if err := mgr.Remove(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed model: %s\n", args[0])
	return nil
}
