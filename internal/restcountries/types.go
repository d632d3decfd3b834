package restcountries

// Fields запрашиваемые у REST Countries поля.
const Fields = "name,cca3,currencies,capital,region,languages,landlocked,area,population,maps"

type countryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

type currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type maps struct {
	GoogleMaps     string `json:"googleMaps"`
	OpenStreetMaps string `json:"openStreetMaps"`
}

// rawCountry запись ответа /all в формате v3.1.
type rawCountry struct {
	Name       countryName         `json:"name"`
	CCA3       string              `json:"cca3"`
	Currencies map[string]currency `json:"currencies"`
	Capital    []string            `json:"capital"`
	Region     string              `json:"region"`
	Languages  map[string]string   `json:"languages"`
	Landlocked bool                `json:"landlocked"`
	Area       *float64            `json:"area"`
	Population *int64              `json:"population"`
	Maps       maps                `json:"maps"`
}
