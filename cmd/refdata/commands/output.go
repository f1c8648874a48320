package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/openfroyo/refdata/pkg/refdata"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator("-")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	return table
}

// recordRows returns the table header and rows for one collection.
func recordRows(snap *refdata.Snapshot, kind refdata.Kind) ([]string, [][]string) {
	var rows [][]string

	switch kind {
	case refdata.KindProductStores:
		for _, ps := range snap.ProductStores() {
			rows = append(rows, productStoreRow(ps))
		}
		return productStoreHeader, rows
	case refdata.KindFacilityTypes:
		for _, ft := range snap.FacilityTypes() {
			rows = append(rows, []string{ft.FacilityTypeID, ft.ParentTypeID, ft.Description})
		}
		return []string{"Facility Type", "Parent", "Description"}, rows
	case refdata.KindLocationTypes:
		for _, lt := range snap.LocationTypes() {
			rows = append(rows, []string{lt.LocationTypeEnumID, strconv.Itoa(lt.SequenceNum), lt.Description})
		}
		return []string{"Enum ID", "Sequence", "Description"}, rows
	case refdata.KindCountries:
		for _, c := range snap.Countries() {
			rows = append(rows, []string{c.GeoID, c.GeoName, c.GeoCodeAlpha2, c.GeoCodeAlpha3})
		}
		return []string{"Geo ID", "Name", "Alpha-2", "Alpha-3"}, rows
	case refdata.KindStates:
		for _, s := range snap.States() {
			rows = append(rows, []string{s.GeoID, s.GeoName, s.GeoCode, s.CountryGeoID})
		}
		return []string{"Geo ID", "Name", "Code", "Country"}, rows
	case refdata.KindPartyRoles:
		for _, r := range snap.PartyRoles() {
			rows = append(rows, []string{r.RoleTypeID, r.ParentTypeID, r.Description})
		}
		return []string{"Role Type", "Parent", "Description"}, rows
	case refdata.KindExternalMappingTypes:
		for _, m := range snap.ExternalMappingTypes() {
			rows = append(rows, []string{m.MappingTypeID, m.EnumTypeID, m.Description})
		}
		return []string{"Enum ID", "Enum Type", "Description"}, rows
	}
	return nil, nil
}

var productStoreHeader = []string{"Product Store", "Name", "Company", "Facility Group", "Currency", "Attributes"}

func productStoreRow(ps refdata.ProductStore) []string {
	attrs := make([]string, 0, len(ps.Attributes))
	for _, k := range ps.AttributeKeys() {
		attrs = append(attrs, k+"="+ps.Attributes[k])
	}
	return []string{
		ps.ProductStoreID,
		ps.StoreName,
		ps.CompanyName,
		ps.PrimaryFacilityGroupID,
		ps.DefaultCurrencyUomID,
		strings.Join(attrs, ","),
	}
}
