package geo

// regionRules is evaluated top to bottom.
var regionRules = []Rule{
	{RegionEurope, Box{MinLat: 36.0, MaxLat: 71.5, MinLon: -25.0, MaxLon: 45.0}},
	// Central America before South America so Panama stays in North America.
	{RegionNorthAmerica, Box{MinLat: 7.0, MaxLat: 18.5, MinLon: -92.5, MaxLon: -77.2}},
	{RegionSouthAmerica, Box{MinLat: -56.0, MaxLat: 12.5, MinLon: -82.0, MaxLon: -34.0}},
	{RegionNorthAmerica, Box{MinLat: 7.0, MaxLat: 84.0, MinLon: -170.0, MaxLon: -50.0}},
	// Levant and Arabian peninsula before the Africa box that covers them.
	{RegionAsia, Box{MinLat: 29.5, MaxLat: 38.0, MinLon: 34.2, MaxLon: 39.0}},
	{RegionAsia, Box{MinLat: 12.5, MaxLat: 38.0, MinLon: 39.0, MaxLon: 63.0}},
	{RegionAfrica, Box{MinLat: -35.0, MaxLat: 37.5, MinLon: -18.0, MaxLon: 52.0}},
	{RegionAustralia, Box{MinLat: -50.0, MaxLat: -10.0, MinLon: 110.0, MaxLon: 180.0}},
	{RegionAsia, Box{MinLat: -11.0, MaxLat: 82.0, MinLon: 26.0, MaxLon: 180.0}},
}

// countryRules is evaluated top to bottom. Small countries precede the
// larger neighbours whose boxes overlap them.
var countryRules = []Rule{
	// Europe
	{"Belgium", Box{MinLat: 49.5, MaxLat: 51.3, MinLon: 2.5, MaxLon: 6.4}},
	{"Netherlands", Box{MinLat: 51.2, MaxLat: 53.6, MinLon: 3.3, MaxLon: 6.0}},
	{"Netherlands", Box{MinLat: 51.8, MaxLat: 53.6, MinLon: 6.0, MaxLon: 7.2}},
	{"Switzerland", Box{MinLat: 45.8, MaxLat: 47.8, MinLon: 5.9, MaxLon: 10.5}},
	{"Slovakia", Box{MinLat: 47.7, MaxLat: 49.6, MinLon: 16.8, MaxLon: 22.6}},
	{"Austria", Box{MinLat: 46.4, MaxLat: 47.8, MinLon: 9.5, MaxLon: 13.0}},
	{"Austria", Box{MinLat: 46.4, MaxLat: 49.0, MinLon: 13.0, MaxLon: 17.2}},
	{"Czech Republic", Box{MinLat: 48.5, MaxLat: 51.0, MinLon: 12.1, MaxLon: 18.9}},
	{"Denmark", Box{MinLat: 54.5, MaxLat: 57.8, MinLon: 8.0, MaxLon: 15.2}},
	{"Slovenia", Box{MinLat: 45.4, MaxLat: 46.9, MinLon: 13.4, MaxLon: 15.6}},
	{"Germany", Box{MinLat: 47.2, MaxLat: 55.1, MinLon: 5.8, MaxLon: 15.1}},
	{"Poland", Box{MinLat: 49.0, MaxLat: 54.9, MinLon: 14.1, MaxLon: 24.2}},
	{"Hungary", Box{MinLat: 45.7, MaxLat: 48.6, MinLon: 16.1, MaxLon: 22.9}},
	{"Croatia", Box{MinLat: 42.4, MaxLat: 46.6, MinLon: 13.4, MaxLon: 19.5}},
	{"Serbia", Box{MinLat: 42.2, MaxLat: 46.2, MinLon: 18.8, MaxLon: 23.0}},
	{"Romania", Box{MinLat: 43.6, MaxLat: 48.3, MinLon: 20.2, MaxLon: 29.7}},
	{"Bulgaria", Box{MinLat: 41.2, MaxLat: 44.2, MinLon: 22.3, MaxLon: 28.6}},
	{"Turkey", Box{MinLat: 35.8, MaxLat: 42.1, MinLon: 26.0, MaxLon: 44.8}},
	{"Greece", Box{MinLat: 34.8, MaxLat: 41.8, MinLon: 19.3, MaxLon: 29.7}},
	{"Italy", Box{MinLat: 36.6, MaxLat: 47.1, MinLon: 6.6, MaxLon: 18.5}},
	{"Portugal", Box{MinLat: 36.9, MaxLat: 42.2, MinLon: -9.5, MaxLon: -6.2}},
	{"Spain", Box{MinLat: 36.0, MaxLat: 43.8, MinLon: -9.3, MaxLon: 3.3}},
	{"France", Box{MinLat: 41.3, MaxLat: 51.1, MinLon: -5.2, MaxLon: 9.6}},
	{"Ireland", Box{MinLat: 51.4, MaxLat: 55.4, MinLon: -10.5, MaxLon: -6.0}},
	{"United Kingdom", Box{MinLat: 49.9, MaxLat: 60.9, MinLon: -8.2, MaxLon: 1.8}},
	{"Sweden", Box{MinLat: 55.3, MaxLat: 69.1, MinLon: 11.0, MaxLon: 24.2}},
	{"Finland", Box{MinLat: 59.8, MaxLat: 70.1, MinLon: 20.5, MaxLon: 31.6}},
	{"Norway", Box{MinLat: 57.9, MaxLat: 71.2, MinLon: 4.5, MaxLon: 31.1}},

	// North America
	{"Canada", Box{MinLat: 45.0, MaxLat: 49.0, MinLon: -79.5, MaxLon: -71.1}},
	{"Canada", Box{MinLat: 43.4, MaxLat: 44.5, MinLon: -80.0, MaxLon: -78.5}},
	{"United States", Box{MinLat: 24.5, MaxLat: 31.0, MinLon: -87.6, MaxLon: -80.0}},
	{"United States", Box{MinLat: 25.8, MaxLat: 49.0, MinLon: -125.0, MaxLon: -66.9}},
	{"United States", Box{MinLat: 51.0, MaxLat: 71.5, MinLon: -170.0, MaxLon: -129.9}},
	{"United States", Box{MinLat: 18.9, MaxLat: 22.3, MinLon: -160.3, MaxLon: -154.8}},
	{"Mexico", Box{MinLat: 14.5, MaxLat: 32.7, MinLon: -118.4, MaxLon: -86.7}},
	{"Canada", Box{MinLat: 41.7, MaxLat: 83.1, MinLon: -141.0, MaxLon: -52.6}},

	// South America
	{"Chile", Box{MinLat: -56.0, MaxLat: -17.5, MinLon: -76.0, MaxLon: -69.5}},
	{"Argentina", Box{MinLat: -55.1, MaxLat: -21.8, MinLon: -73.6, MaxLon: -53.6}},
	{"Brazil", Box{MinLat: -33.8, MaxLat: 5.3, MinLon: -74.0, MaxLon: -34.8}},

	// Oceania
	{"Australia", Box{MinLat: -43.7, MaxLat: -10.0, MinLon: 112.9, MaxLon: 153.7}},
	{"New Zealand", Box{MinLat: -47.3, MaxLat: -34.4, MinLon: 166.4, MaxLon: 178.6}},

	// Asia
	{"South Korea", Box{MinLat: 33.1, MaxLat: 38.6, MinLon: 124.6, MaxLon: 130.0}},
	{"Japan", Box{MinLat: 24.0, MaxLat: 45.6, MinLon: 122.9, MaxLon: 145.9}},
	{"Philippines", Box{MinLat: 4.6, MaxLat: 21.1, MinLon: 116.9, MaxLon: 126.6}},
	{"Vietnam", Box{MinLat: 8.4, MaxLat: 23.4, MinLon: 102.1, MaxLon: 109.5}},
	{"Thailand", Box{MinLat: 5.6, MaxLat: 20.5, MinLon: 97.3, MaxLon: 105.7}},
	{"Malaysia", Box{MinLat: 0.85, MaxLat: 7.4, MinLon: 99.6, MaxLon: 119.3}},
	{"Indonesia", Box{MinLat: -11.0, MaxLat: 6.1, MinLon: 95.0, MaxLon: 141.0}},
	{"India", Box{MinLat: 6.7, MaxLat: 35.5, MinLon: 68.1, MaxLon: 97.4}},
	{"China", Box{MinLat: 18.1, MaxLat: 53.6, MinLon: 73.5, MaxLon: 134.8}},
	{"Israel", Box{MinLat: 29.5, MaxLat: 33.3, MinLon: 34.3, MaxLon: 35.9}},
	{"United Arab Emirates", Box{MinLat: 22.6, MaxLat: 26.1, MinLon: 51.5, MaxLon: 56.4}},

	// Africa
	{"Egypt", Box{MinLat: 22.0, MaxLat: 31.7, MinLon: 24.7, MaxLon: 36.9}},
	{"Morocco", Box{MinLat: 27.7, MaxLat: 35.9, MinLon: -13.2, MaxLon: -1.0}},
	{"Nigeria", Box{MinLat: 4.3, MaxLat: 13.9, MinLon: 2.7, MaxLon: 14.7}},
	{"Kenya", Box{MinLat: -4.7, MaxLat: 5.0, MinLon: 33.9, MaxLon: 41.9}},
	{"South Africa", Box{MinLat: -34.8, MaxLat: -22.1, MinLon: 16.5, MaxLon: 32.9}},
}
