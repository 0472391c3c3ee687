package survey_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridroute/gridgraph"
	"github.com/katalvlaran/gridroute/survey"
)

func TestLoad_JoinAndFilter(t *testing.T) {
	ds, err := survey.Load("testdata")
	require.NoError(t, err)
	require.Len(t, ds.Rows, 12)

	area1 := ds.FilterArea(1)
	require.Len(t, area1.Rows, 9)
	first := area1.Rows[0]
	require.NotNil(t, first.Coord)
	assert.Equal(t, gridgraph.C(1, 1), *first.Coord)
	assert.Equal(t, gridgraph.CategoryMyHome, first.Category)
	assert.Equal(t, "MyHome", first.Struct)

	home, err := area1.Locate(gridgraph.CategoryMyHome)
	require.NoError(t, err)
	assert.Equal(t, gridgraph.C(1, 1), home)
	cafe, err := area1.Locate(gridgraph.CategoryBandalgomCoffee)
	require.NoError(t, err)
	assert.Equal(t, gridgraph.C(3, 3), cafe)

	// the area-2 café is filtered out, but visible in the full dataset
	all, err := ds.Locate(gridgraph.CategoryBandalgomCoffee)
	require.NoError(t, err)
	assert.Equal(t, gridgraph.C(3, 3), all)

	assert.Equal(t, []gridgraph.Coordinate{{X: 2, Y: 2}}, area1.ConstructionSites())
	assert.Len(t, area1.Structures(), 4)
	assert.Equal(t, "Building", area1.Name(gridgraph.CategoryBuilding))
}

func TestRead_SortsAndLeftJoins(t *testing.T) {
	mapCSV := "x,y,ConstructionSite\n2,1,0\n1,1,1\n1,2,0\n"
	structCSV := " x , y , category , area \n1,1,2,1\n2,1,,1\n"
	catCSV := "category, struct\n2, Building\n"

	ds, err := survey.Read(strings.NewReader(mapCSV), strings.NewReader(structCSV), strings.NewReader(catCSV))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 3)

	assert.Equal(t, gridgraph.C(1, 1), *ds.Rows[0].Coord)
	assert.True(t, ds.Rows[0].ConstructionSite)
	assert.Equal(t, "Building", ds.Rows[0].Struct)

	// (1,2) has no struct row: category 0, no area
	assert.Equal(t, gridgraph.C(1, 2), *ds.Rows[1].Coord)
	assert.Equal(t, gridgraph.CategoryEmpty, ds.Rows[1].Category)
	assert.Equal(t, survey.NoArea, ds.Rows[1].Area)

	// (2,1) has a blank category: treated as 0
	assert.Equal(t, gridgraph.CategoryEmpty, ds.Rows[2].Category)
	assert.Equal(t, 1, ds.Rows[2].Area)
}

func TestRead_AliasesAndFloats(t *testing.T) {
	mapCSV := "x,y,ConstructionSite\n1.0,1.0,1.0\n"
	structCSV := "x,y,struct_id,area\n1,1,nan,1.0\n"
	catCSV := "struct_id,struct_name\n1,Apartment\n"

	ds, err := survey.Read(strings.NewReader(mapCSV), strings.NewReader(structCSV), strings.NewReader(catCSV))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	assert.True(t, ds.Rows[0].ConstructionSite)
	assert.Equal(t, gridgraph.CategoryEmpty, ds.Rows[0].Category)
	assert.Equal(t, 1, ds.Rows[0].Area)
}

func TestRead_MissingCoordinateReachesBuilder(t *testing.T) {
	mapCSV := "x,y,ConstructionSite\n1,1,0\n,2,0\n"
	structCSV := "x,y,category,area\n1,1,0,1\n"
	catCSV := "category,struct\n"

	ds, err := survey.Read(strings.NewReader(mapCSV), strings.NewReader(structCSV), strings.NewReader(catCSV))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 2)
	assert.Nil(t, ds.Rows[1].Coord)

	_, err = gridgraph.Build(ds.Records())
	require.ErrorIs(t, err, gridgraph.ErrMissingCoordinate)

	// the area filter must not hide the malformed row
	area1 := ds.FilterArea(1)
	require.Len(t, area1.Rows, 2)
	_, err = gridgraph.Build(area1.Records())
	require.ErrorIs(t, err, gridgraph.ErrMissingCoordinate)
	assert.Len(t, ds.FilterArea(2).Rows, 1)
}

func TestRead_Errors(t *testing.T) {
	okStruct := "x,y,category,area\n"
	okCat := "category,struct\n"
	cases := []struct {
		name              string
		mapCSV, structCSV string
		catCSV            string
		err               error
	}{
		{"MissingMapColumn", "x,y\n1,1\n", okStruct, okCat, survey.ErrMissingColumn},
		{"MissingStructColumn", "x,y,ConstructionSite\n", "x,y,area\n", okCat, survey.ErrMissingColumn},
		{"EmptyCategoryTable", "x,y,ConstructionSite\n", okStruct, "", survey.ErrMissingColumn},
		{"BadCoordinate", "x,y,ConstructionSite\nabc,1,0\n", okStruct, okCat, survey.ErrBadValue},
		{"FractionalCoordinate", "x,y,ConstructionSite\n1.5,1,0\n", okStruct, okCat, survey.ErrBadValue},
		{"HugeCoordinate", "x,y,ConstructionSite\n1e300,1,0\n", okStruct, okCat, survey.ErrBadValue},
		{"HugeNegativeArea", "x,y,ConstructionSite\n", "x,y,category,area\n1,1,0,-1e19\n", okCat, survey.ErrBadValue},
		{"BadFlag", "x,y,ConstructionSite\n1,1,maybe\n", okStruct, okCat, survey.ErrBadValue},
		{"BadCategory", "x,y,ConstructionSite\n", "x,y,category,area\n1,1,two,1\n", okCat, survey.ErrBadValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := survey.Read(strings.NewReader(tc.mapCSV), strings.NewReader(tc.structCSV), strings.NewReader(tc.catCSV))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLocate_NotFound(t *testing.T) {
	ds, err := survey.Load("testdata")
	require.NoError(t, err)
	_, err = ds.Locate(gridgraph.Category(99))
	require.ErrorIs(t, err, survey.ErrCategoryNotFound)

	_, err = survey.Load("does-not-exist")
	require.Error(t, err)
}

func TestSummary(t *testing.T) {
	ds, err := survey.Load("testdata")
	require.NoError(t, err)

	sum := ds.FilterArea(1).Summary()
	require.Len(t, sum, 4)
	assert.Equal(t, "Apartment", sum[0].Name)
	assert.Equal(t, []gridgraph.Coordinate{{X: 2, Y: 1}}, sum[0].Locations)
	assert.Equal(t, "BandalgomCoffee", sum[3].Name)
	assert.Equal(t, 1, sum[3].Count)

	full := ds.Summary()
	assert.Equal(t, 2, full[3].Count)
}
