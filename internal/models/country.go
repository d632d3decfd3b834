package models

// Country — нормализованная запись справочника стран.
type Country struct {
	Code       string              `json:"code"`
	Name       string              `json:"name"`
	Capital    []string            `json:"capital"`
	Region     string              `json:"region"`
	Languages  map[string]string   `json:"languages"`
	Landlocked bool                `json:"landlocked"`
	Area       *float64            `json:"area"`
	Population *int64              `json:"population"`
	MapsURL    string              `json:"mapsUrl"`
	Currencies map[string]Currency `json:"currencies"`
}

// Currency описывает валюту страны.
type Currency struct {
	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// Comparison — проекция страны для сравнения.
type Comparison struct {
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	Region            string   `json:"region"`
	Landlocked        bool     `json:"landlocked"`
	Population        *int64   `json:"population"`
	Area              *float64 `json:"area"`
	LanguagesCount    int      `json:"languagesCount"`
	CurrencyCodes     []string `json:"currencyCodes"`
	PopulationDensity *float64 `json:"populationDensity"`
}
