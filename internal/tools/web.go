package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/franklab/frank/internal/logging"
)

// WebTools groups the HTTP-backed tools: weather lookups through
// OpenWeather and web search through Serper.
type WebTools struct {
	weatherKey string
	serperKey  string
	weatherURL string
	serperURL  string
	httpClient *http.Client
	log        *logging.Logger
}

// NewWebTools reads API keys from the environment. Missing keys are not
// an error here: each call reports them as a user-facing message.
func NewWebTools() *WebTools {
	return &WebTools{
		weatherKey: os.Getenv("OPENWEATHER_API_KEY"),
		serperKey:  os.Getenv("SERPER_API_KEY"),
		weatherURL: "https://api.openweathermap.org/data/2.5/weather",
		serperURL:  "https://google.serper.dev/search",
		httpClient: &http.Client{Timeout: 20 * time.Second},
		log:        logging.WithField("component", "webtools"),
	}
}

type weatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Weather answers a spoken-friendly weather summary for the city.
func (w *WebTools) Weather(args map[string]interface{}) string {
	city := argString(args, "city")
	if city == "" {
		city = "Paris"
	}
	if w.weatherKey == "" {
		return "Clé OPENWEATHER_API_KEY manquante."
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", w.weatherKey)
	q.Set("units", "metric")
	q.Set("lang", "fr")

	resp, err := w.httpClient.Get(w.weatherURL + "?" + q.Encode())
	if err != nil {
		return fmt.Sprintf("Erreur réseau météo: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Impossible de récupérer la météo pour %s.", city)
	}

	var data weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Sprintf("Impossible de récupérer la météo pour %s.", city)
	}

	name := data.Name
	if name == "" {
		name = city
	}
	desc := ""
	if len(data.Weather) > 0 {
		desc = data.Weather[0].Description
	}

	temp := int(math.Round(data.Main.Temp))
	feels := int(math.Round(data.Main.FeelsLike))

	if data.Wind.Speed > 0 {
		windKmh := int(math.Round(data.Wind.Speed * 3.6))
		return fmt.Sprintf("À %s, il fait %d degrés, %s. Ressenti %d degrés. Vent %d kilomètres heure.",
			name, temp, desc, feels, windKmh)
	}
	return fmt.Sprintf("À %s, il fait %d degrés, %s. Ressenti %d degrés.", name, temp, desc, feels)
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// WebSearch returns the top organic results as a context block meant to
// be re-summarized by a generation call.
func (w *WebTools) WebSearch(args map[string]interface{}) string {
	query := argString(args, "query")
	if query == "" {
		return "Aucune requête de recherche fournie."
	}
	if w.serperKey == "" {
		return "Clé SERPER_API_KEY manquante."
	}

	payload, _ := json.Marshal(map[string]interface{}{"q": query, "num": 5})
	req, err := http.NewRequest("POST", w.serperURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Sprintf("Erreur réseau Serper: %v", err)
	}
	req.Header.Set("X-API-KEY", w.serperKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Erreur réseau Serper: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Sprintf("Erreur Serper HTTP %d: %s", resp.StatusCode, string(body))
	}

	var data serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return fmt.Sprintf("Erreur Serper: %v", err)
	}

	if len(data.Organic) == 0 {
		return fmt.Sprintf("Aucun résultat trouvé pour : %s", query)
	}

	blocks := make([]string, 0, 5)
	for i, item := range data.Organic {
		if i == 5 {
			break
		}
		blocks = append(blocks, fmt.Sprintf("Titre: %s\nSource: %s\nExtrait: %s",
			item.Title, item.Link, item.Snippet))
	}
	return strings.Join(blocks, "\n\n")
}
