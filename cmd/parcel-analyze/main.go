// parcel-analyze computes a parcel trajectory from a sounding CSV and
// prints the derived convective levels. The CSV holds one level per
// row as pressure (hPa), height (m), temperature (K); a header row is
// skipped automatically.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aeharding/skewt/internal/database"
	"github.com/aeharding/skewt/pkg/atmos"
	"github.com/aeharding/skewt/pkg/parcel"
)

func main() {
	var (
		soundingFile = flag.String("sounding", "", "Path to sounding CSV (pressure,height,temperature per row)")
		temperature  = flag.Float64("temperature", 0, "Surface parcel temperature (K)")
		pressure     = flag.Float64("pressure", 0, "Surface pressure (hPa)")
		dewpoint     = flag.Float64("dewpoint", 0, "Surface dewpoint (K)")
		steps        = flag.Int("steps", 40, "Number of integration steps")
		jsonOutput   = flag.Bool("json", false, "Emit the full trajectory as JSON")
		storePath    = flag.String("store", "", "Optional SQLite archive to save the sounding into")
		name         = flag.String("name", "", "Sounding name used with -store")
	)
	flag.Parse()

	if *soundingFile == "" || *temperature == 0 || *pressure == 0 || *dewpoint == 0 {
		fmt.Fprintln(os.Stderr, "Error: -sounding, -temperature, -pressure, and -dewpoint are required")
		flag.Usage()
		os.Exit(1)
	}

	snd, err := readSoundingCSV(*soundingFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading sounding: %v\n", err)
		os.Exit(1)
	}

	if *storePath != "" {
		if err := storeSounding(*storePath, *name, snd); err != nil {
			fmt.Fprintf(os.Stderr, "Error storing sounding: %v\n", err)
			os.Exit(1)
		}
	}

	res, err := parcel.Trajectory(snd, *steps, *temperature, *pressure, *dewpoint)
	if errors.Is(err, parcel.ErrNoConvection) {
		fmt.Println("No convection: the lifted parcel never becomes cooler than the environment.")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(snd, res)
}

func readSoundingCSV(path string) (parcel.Sounding, error) {
	var snd parcel.Sounding

	f, err := os.Open(path)
	if err != nil {
		return snd, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	records, err := r.ReadAll()
	if err != nil {
		return snd, err
	}

	for i, rec := range records {
		p, errP := strconv.ParseFloat(rec[0], 64)
		h, errH := strconv.ParseFloat(rec[1], 64)
		t, errT := strconv.ParseFloat(rec[2], 64)
		if errP != nil || errH != nil || errT != nil {
			if i == 0 {
				continue // header row
			}
			return snd, fmt.Errorf("bad row %d: %v", i+1, rec)
		}
		snd.Pressure = append(snd.Pressure, p)
		snd.Height = append(snd.Height, h)
		snd.Temperature = append(snd.Temperature, t)
	}

	return snd, snd.Validate()
}

func storeSounding(path, name string, snd parcel.Sounding) error {
	store, err := database.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := &database.Sounding{
		Name:       name,
		ObservedAt: time.Now().UTC(),
		Levels:     make([]database.Level, len(snd.Pressure)),
	}
	for i := range snd.Pressure {
		rec.Levels[i] = database.Level{
			Pressure:    snd.Pressure[i],
			Height:      snd.Height[i],
			Temperature: snd.Temperature[i],
		}
	}
	if err := store.SaveSounding(context.Background(), rec); err != nil {
		return err
	}
	fmt.Printf("Stored sounding %s\n\n", rec.ID)
	return nil
}

func printReport(snd parcel.Sounding, res *parcel.Result) {
	fmt.Printf("Parcel Trajectory\n")
	fmt.Printf("=================\n\n")

	fmt.Printf("Thermal top:  %8.1f hPa  %7.0f m\n", res.PThermalTop, res.ElevThermalTop)
	if res.Moist != nil {
		cloudTopElev := atmos.Elevation(res.PCloudTop)
		fmt.Printf("Cloud base:   %8.1f hPa  %7.0f m\n", res.PThermalTop, res.ElevThermalTop)
		fmt.Printf("Cloud top:    %8.1f hPa  %7.0f m (standard atmosphere)\n", res.PCloudTop, cloudTopElev)
	} else {
		fmt.Printf("Cloud base:   none below the thermal top (dry ascent)\n")
		fmt.Printf("Cloud top:    %8.1f hPa (sounding top)\n", res.PCloudTop)
	}

	fmt.Printf("\nDry curve: %d samples from %.1f to %.1f hPa\n",
		len(res.Dry), res.Dry[0].Y, res.Dry[len(res.Dry)-1].Y)
	if res.Moist != nil {
		fmt.Printf("Moist curve: %d samples from %.1f to %.1f hPa\n",
			len(res.Moist), res.Moist[0].Y, res.Moist[len(res.Moist)-1].Y)
		fmt.Printf("Isohume: %d samples\n", len(res.Isohume))
	}
}
