package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"trackinterp/internal/models"
	"trackinterp/pkg/batch"
	"trackinterp/pkg/config"
	"trackinterp/pkg/interpolation"
	"trackinterp/pkg/progress"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "trackinterp.yaml", "YAML configuration file")
	initConfig := flag.Bool("init-config", false, "Write a default configuration file and exit")
	method := flag.String("method", "", "Interpolation method: planar, spherical, current-density, volumetric")
	degree := flag.Int("degree", 0, "Spline degree, 1 to 6")
	target := flag.String("target", "", "Coregistration: fiducial or normalized")
	from := flag.String("from", "", "Source electrodes .xyz file")
	to := flag.String("to", "", "Destination electrodes .xyz file")
	bad := flag.String("bad", "", "Source bad channels, e.g. \"T7 F8 12-14\"")
	fromLandmarks := flag.String("from-landmarks", "", "Source landmarks, e.g. \"front=Fpz;left=T7;top=Cz;right=T8;rear=Oz\"")
	toLandmarks := flag.String("to-landmarks", "", "Destination landmarks, same syntax as -from-landmarks")
	infix := flag.String("infix", "", "Infix of the output file names")
	ext := flag.String("ext", "", "Extension of the output files (default: same as input)")
	tempDir := flag.String("temp-dir", "", "Directory for the intermediate layouts")
	keepTemp := flag.Bool("keep-temp", false, "Keep the intermediate layouts")
	plotLayout := flag.Bool("plot", false, "Plot the projected layouts into the temp directory")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: from config)")
	quiet := flag.Bool("quiet", false, "Only print errors")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Interpolation.Method = *method
		case "degree":
			cfg.Interpolation.Degree = *degree
		case "target":
			cfg.Interpolation.Target = *target
		case "from":
			cfg.Interpolation.From.File = *from
		case "to":
			cfg.Interpolation.To.File = *to
		case "bad":
			cfg.Interpolation.From.BadChannels = *bad
		case "infix":
			cfg.Output.Infix = *infix
		case "ext":
			cfg.Output.Extension = *ext
		case "temp-dir":
			cfg.Output.TempDir = *tempDir
		case "keep-temp":
			cfg.Output.KeepTempFiles = *keepTemp
		case "plot":
			cfg.Output.PlotLayout = *plotLayout
		case "cores":
			cfg.Processing.NumCores = *numCores
		case "quiet":
			cfg.Output.Verbose = !*quiet
		}
	})
	if *fromLandmarks != "" {
		if cfg.Interpolation.From.Landmarks, err = parseLandmarks(*fromLandmarks); err != nil {
			log.Fatalf("Invalid -from-landmarks: %v", err)
		}
	}
	if *toLandmarks != "" {
		if cfg.Interpolation.To.Landmarks, err = parseLandmarks(*toLandmarks); err != nil {
			log.Fatalf("Invalid -to-landmarks: %v", err)
		}
	}

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	settings, err := cfg.Settings()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var reporter progress.Reporter = progress.Discard{}
	if cfg.Output.Verbose {
		reporter = progress.NewConsole(os.Stdout)
	} else {
		interpolation.SetLogger(nil)
	}

	sink := interpolation.ErrorSinkFunc(func(title, message string) {
		log.Printf("%s: %s", title, message)
	})

	runner := batch.NewRunner(interpolation.Options{
		NumWorkers:       cfg.Processing.NumCores,
		Progress:         reporter,
		PlotLayout:       cfg.Output.PlotLayout,
		ProgressInterval: cfg.Processing.ProgressInterval,
	}, cfg.Output.Infix, cfg.Output.Extension, sink)

	engine := runner.Engine()
	if cfg.Output.TempDir != "" {
		if err := os.MkdirAll(cfg.Output.TempDir, 0755); err != nil {
			log.Fatalf("Failed to create temp directory: %v", err)
		}
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("TRACKS INTERPOLATION")
		fmt.Printf("%s spline, degree %d, %s coregistration\n", settings.Method, interpolation.ClampDegree(settings.Degree), settings.Target)
		fmt.Printf("%s -> %s\n", settings.From.Path, settings.To.Path)
		fmt.Println("================================")
	}

	startTime := time.Now()
	if err := engine.Set(settings.Method, settings.Degree, settings.Target, settings.From, settings.To, cfg.Output.TempDir, sink); err != nil {
		os.Exit(1)
	}
	if !cfg.Output.KeepTempFiles {
		defer func() {
			if err := engine.FilesCleanUp(); err != nil {
				log.Printf("Warning: Failed to clean up intermediate files: %v", err)
			}
		}()
	}
	setupTime := time.Since(startTime)

	results, summary := runner.Run(files)

	if cfg.Output.Verbose {
		fmt.Printf("\nSetup completed in %.2f seconds\n", setupTime.Seconds())
		for _, res := range results {
			if res.Err != nil {
				fmt.Printf("- %s: FAILED\n", res.Input)
				continue
			}
			fmt.Printf("- %s -> %s (%d frames, GFP %.4g ± %.4g)\n", res.Input, res.Output, res.Frames, res.GFPMean, res.GFPStdDev)
		}
		fmt.Printf("\n%s\n", summary)
		if cfg.Output.KeepTempFiles {
			for _, f := range engine.TempFiles() {
				fmt.Printf("Intermediate file: %s\n", f)
			}
		}
	}

	if summary.Failed > 0 {
		// Deferred clean up does not run through os.Exit
		if !cfg.Output.KeepTempFiles {
			engine.FilesCleanUp()
		}
		os.Exit(2)
	}
}

// parseLandmarks reads "front=a,b;left=c;top=d;right=e;rear=f"
func parseLandmarks(s string) (models.Landmarks, error) {
	var lm models.Landmarks
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return lm, fmt.Errorf("expected group=names, got %q", part)
		}
		names := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' })

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "front":
			lm.Front = names
		case "left":
			lm.Left = names
		case "top":
			lm.Top = names
		case "right":
			lm.Right = names
		case "rear":
			lm.Rear = names
		default:
			return lm, fmt.Errorf("unknown landmark group %q", key)
		}
	}
	return lm, nil
}
