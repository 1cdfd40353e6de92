package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/client/tokencache"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/models"
)

type obsClient struct{ serverURL *string }

func newObsCmd(serverURL *string) *cobra.Command {
	o := &obsClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "obs", Short: "Manage observation records"}
	cmd.AddCommand(&cobra.Command{Use: "list", Short: "List observations", RunE: o.list})
	cmd.AddCommand(&cobra.Command{Use: "get", Short: "Get observation by id", Args: cobra.ExactArgs(1), RunE: o.get})
	cmd.AddCommand(o.newAddCmd())
	cmd.AddCommand(o.newSearchCmd())
	cmd.AddCommand(o.newExportCmd())
	cmd.AddCommand(&cobra.Command{Use: "import <file>", Short: "Import observations from an exported document", Args: cobra.ExactArgs(1), RunE: o.importDoc})
	return cmd
}

func (o *obsClient) do(method, path string, payload any) (*http.Response, error) {
	token, err := tokencache.Load()
	if err != nil {
		return nil, err
	}
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, *o.serverURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return http.DefaultClient.Do(req)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *obsClient) list(cmd *cobra.Command, args []string) error {
	resp, err := o.do("GET", "/observations", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("list failed: %s", resp.Status)
	}
	var records []models.ObservationRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return err
	}
	return printJSON(cmd, records)
}

func (o *obsClient) get(cmd *cobra.Command, args []string) error {
	resp, err := o.do("GET", "/observations/"+args[0], nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("get failed: %s", resp.Status)
	}
	var rec models.ObservationRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return err
	}
	return printJSON(cmd, rec)
}

func (o *obsClient) newAddCmd() *cobra.Command {
	var (
		rec      models.ObservationRecord
		lat, lon float64
		loc      models.IncidentLocation
		images   []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if loc != (models.IncidentLocation{}) || cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				if cmd.Flags().Changed("lat") {
					loc.Latitude = &lat
				}
				if cmd.Flags().Changed("lon") {
					loc.Longitude = &lon
				}
				rec.Location = &loc
			}
			for _, url := range images {
				rec.Images = append(rec.Images, models.ImageRef{URL: url})
			}
			resp, err := o.do("POST", "/observations", rec)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				return fmt.Errorf("add failed: %s", resp.Status)
			}
			var created models.ObservationRecord
			if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Observation %d recorded\n", created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&rec.Date, "date", "", "Observation date (YYYY-MM-DD)")
	f.StringVar(&rec.Time, "time", "", "Observation time (HH:MM)")
	f.StringVar(&rec.Person.Name, "person-name", "", "Person name")
	f.StringVar(&rec.Person.Clothing, "person-clothing", "", "Person clothing")
	f.StringVar(&rec.Person.Notes, "person-notes", "", "Person notes")
	f.StringVar(&rec.Vehicle.Make, "vehicle-make", "", "Vehicle make")
	f.StringVar(&rec.Vehicle.Model, "vehicle-model", "", "Vehicle model")
	f.StringVar(&rec.Vehicle.Color, "vehicle-color", "", "Vehicle color")
	f.StringVar(&rec.Vehicle.LicensePlate, "vehicle-plate", "", "Vehicle license plate")
	f.StringVar(&loc.StreetNumber, "street-number", "", "Street number")
	f.StringVar(&loc.StreetName, "street-name", "", "Street name")
	f.StringVar(&loc.City, "city", "", "City")
	f.StringVar(&loc.State, "state", "", "State")
	f.StringVar(&loc.ZipCode, "zip", "", "Zip code")
	f.Float64Var(&lat, "lat", 0, "Latitude")
	f.Float64Var(&lon, "lon", 0, "Longitude")
	f.StringArrayVar(&images, "image", nil, "Image URL (repeatable)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func (o *obsClient) newSearchCmd() *cobra.Command {
	var (
		from, to          string
		personName        string
		vehicleMake       string
		vehiclePlate      string
		lat, lon, radiusM float64
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.SearchFilter{DateFrom: from, DateTo: to}
			if personName != "" {
				filter.PersonFields = &models.PersonInfo{Name: personName}
			}
			if vehicleMake != "" || vehiclePlate != "" {
				filter.VehicleFields = &models.VehicleInfo{Make: vehicleMake, LicensePlate: vehiclePlate}
			}
			if cmd.Flags().Changed("radius") {
				filter.LocationRadius = &models.LocationRadius{Lat: lat, Lon: lon, RadiusMeters: radiusM}
			}
			resp, err := o.do("POST", "/observations/search", filter)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				return fmt.Errorf("search failed: %s", resp.Status)
			}
			var records []models.ObservationRecord
			if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
				return err
			}
			return printJSON(cmd, records)
		},
	}
	f := cmd.Flags()
	f.StringVar(&from, "from", "", "Start date (inclusive)")
	f.StringVar(&to, "to", "", "End date (inclusive)")
	f.StringVar(&personName, "person-name", "", "Person name substring")
	f.StringVar(&vehicleMake, "vehicle-make", "", "Vehicle make substring")
	f.StringVar(&vehiclePlate, "vehicle-plate", "", "License plate substring")
	f.Float64Var(&lat, "lat", 0, "Radius center latitude")
	f.Float64Var(&lon, "lon", 0, "Radius center longitude")
	f.Float64Var(&radiusM, "radius", 0, "Radius in meters")
	return cmd
}

func (o *obsClient) newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [id...]",
		Short: "Export observations to a document file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload any
			if len(args) > 0 {
				ids := make([]int64, 0, len(args))
				for _, a := range args {
					id, err := strconv.ParseInt(a, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid id %q", a)
					}
					ids = append(ids, id)
				}
				payload = map[string][]int64{"ids": ids}
			}
			resp, err := o.do("POST", "/observations/export", payload)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				return fmt.Errorf("export failed: %s", resp.Status)
			}
			var doc models.Document
			if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
				return err
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(doc.Records), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "observations.json", "Output file")
	return cmd
}

func (o *obsClient) importDoc(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	resp, err := o.do("POST", "/observations/import", map[string]string{"data": string(data)})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("import failed: %s", resp.Status)
	}
	var result models.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records\n", result.ImportedCount)
	for _, e := range result.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "skipped: %s\n", e)
	}
	return nil
}
