// Package main generates a sample NetCDF file for trying out the viewer.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
)

func main() {
	outPath := flag.String("out", "./sample.nc", "Output NetCDF file path")
	nTime := flag.Int("ntime", 12, "Number of time steps")
	nLat := flag.Int("nlat", 90, "Number of latitude points")
	nLon := flag.Int("nlon", 180, "Number of longitude points")
	flag.Parse()

	if err := writeSample(*outPath, *nTime, *nLat, *nLon); err != nil {
		log.Fatalf("Failed to generate sample file: %v", err)
	}
	log.Printf("✓ Generated %s (%d × %d × %d)", *outPath, *nTime, *nLat, *nLon)
}

// writeSample creates a file with a rank-3 sea surface temperature field,
// a rank-2 elevation field and 1-D coordinate variables. A circular
// region of the temperature field is masked with the fill value so the
// viewer's masking path can be exercised.
func writeSample(path string, nTime, nLat, nLon int) error {
	const fill = -9999.0

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer ds.Close()

	timeDim, err := ds.AddDim("time", uint64(nTime))
	if err != nil {
		return err
	}
	latDim, err := ds.AddDim("lat", uint64(nLat))
	if err != nil {
		return err
	}
	lonDim, err := ds.AddDim("lon", uint64(nLon))
	if err != nil {
		return err
	}

	times := make([]float64, nTime)
	for i := range times {
		times[i] = float64(i)
	}
	lat := make([]float64, nLat)
	for i := range lat {
		lat[i] = -89.0 + float64(i)*178.0/float64(nLat-1)
	}
	lon := make([]float64, nLon)
	for i := range lon {
		lon[i] = -179.0 + float64(i)*358.0/float64(nLon-1)
	}

	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	if err != nil {
		return err
	}
	timeVar.WriteFloat64s(times)
	timeVar.Attr("units").WriteChars([]byte("months since 2024-01-01"))

	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	if err != nil {
		return err
	}
	latVar.WriteFloat64s(lat)
	latVar.Attr("units").WriteChars([]byte("degrees_north"))

	lonVar, err := ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	if err != nil {
		return err
	}
	lonVar.WriteFloat64s(lon)
	lonVar.Attr("units").WriteChars([]byte("degrees_east"))

	// Rank-3 field: seasonal temperature pattern with a masked disc.
	sst := make([]float64, nTime*nLat*nLon)
	for t := 0; t < nTime; t++ {
		season := math.Sin(2 * math.Pi * float64(t) / 12.0)
		for i := 0; i < nLat; i++ {
			for j := 0; j < nLon; j++ {
				idx := (t*nLat+i)*nLon + j
				base := 28.0*math.Cos(lat[i]*math.Pi/180.0) - 2.0
				wave := 3.0 * math.Sin(lon[j]*math.Pi/60.0)
				d := math.Hypot(lat[i]-10, lon[j]-40)
				if d < 15 {
					sst[idx] = fill
					continue
				}
				sst[idx] = base + wave + 4.0*season
			}
		}
	}
	sstVar, err := ds.AddVar("sst", netcdf.DOUBLE, []netcdf.Dim{timeDim, latDim, lonDim})
	if err != nil {
		return err
	}
	sstVar.WriteFloat64s(sst)
	sstVar.Attr("units").WriteChars([]byte("degC"))
	sstVar.Attr("long_name").WriteChars([]byte("sea surface temperature"))
	sstVar.Attr("_FillValue").WriteFloat64s([]float64{fill})

	// Rank-2 field for the direct plotting path.
	elev := make([]float64, nLat*nLon)
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			elev[i*nLon+j] = 800.0*math.Sin(lat[i]*math.Pi/45.0)*math.Cos(lon[j]*math.Pi/90.0) - 200.0
		}
	}
	elevVar, err := ds.AddVar("elevation", netcdf.DOUBLE, []netcdf.Dim{latDim, lonDim})
	if err != nil {
		return err
	}
	elevVar.WriteFloat64s(elev)
	elevVar.Attr("units").WriteChars([]byte("m"))

	ds.Attr("title").WriteChars([]byte("GeoView sample dataset"))
	ds.Attr("source").WriteChars([]byte("synthetic"))

	return nil
}
