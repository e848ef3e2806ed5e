package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/franklab/frank/internal/agenda"
	"github.com/franklab/frank/internal/core"
)

// Screenshot captures the screen into dataDir using whichever capture
// utility is installed. The returned string is spoken verbatim.
func Screenshot(dataDir string) Func {
	return func(args map[string]interface{}) string {
		path := filepath.Join(dataDir, fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))

		var err error
		if _, lookErr := exec.LookPath("scrot"); lookErr == nil {
			err = exec.Command("scrot", path).Run()
		} else if _, lookErr := exec.LookPath("gnome-screenshot"); lookErr == nil {
			err = exec.Command("gnome-screenshot", "-f", path).Run()
		} else {
			return "Aucun outil de capture d'écran disponible."
		}

		if err != nil {
			return fmt.Sprintf("Erreur capture d'écran: %v", err)
		}
		return fmt.Sprintf("Capture d'écran enregistrée : %s", path)
	}
}

// MemoryDashboard points the user at the web dashboard.
func MemoryDashboard(baseURL string) Func {
	return func(args map[string]interface{}) string {
		if baseURL == "" {
			return "Le dashboard mémoire n'est pas démarré."
		}
		return fmt.Sprintf("Le dashboard mémoire est disponible sur %s/dashboard", baseURL)
	}
}

// Agenda bridges the planner's agenda args onto the agenda store. Date
// and time arrive as the exact natural-language expressions the user
// spoke; normalization happens inside the store.
func Agenda(store *agenda.Store) Func {
	return func(args map[string]interface{}) string {
		switch argString(args, "action") {
		case "add":
			e, err := store.Add(argString(args, "title"), argString(args, "date"), argString(args, "time"))
			if err != nil {
				return fmt.Sprintf("Impossible d'ajouter l'événement: %v", err)
			}
			return fmt.Sprintf("Événement ajouté : %s le %s à %s", e.Title, e.Date, e.Time)

		case "delete":
			title := argString(args, "title")
			_, err := store.Delete(title)
			if errors.Is(err, core.ErrEventNotFound) {
				return "Aucun événement trouvé avec ce titre."
			}
			if err != nil {
				return fmt.Sprintf("Impossible de supprimer l'événement: %v", err)
			}
			return fmt.Sprintf("Événement supprimé : %s", title)

		case "list", "":
			out := store.Render()
			if out == "" {
				return "Aucun événement enregistré."
			}
			return out

		default:
			return "Action agenda inconnue."
		}
	}
}
