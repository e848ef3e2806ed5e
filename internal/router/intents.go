package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/franklab/frank/internal/core"
)

// Secondary emotion lexicon catching phrasings the behavior analyzer's
// keyword sets miss.
var implicitEmotions = []struct {
	emotion string
	words   []string
}{
	{core.EmotionStressed, []string{"pression", "overload", "trop de travail", "j'en peux plus", "burnout"}},
	{core.EmotionTired, []string{"épuisé", "crevé", "vidé", "hs"}},
	{core.EmotionFrustrated, []string{"ça m'énerve", "injuste", "ras le bol"}},
	{core.EmotionMotivated, []string{"à fond", "déterminé", "let's go", "objectif"}},
	{core.EmotionHappy, []string{"génial", "super", "trop content", "incroyable"}},
}

var intensifiers = []struct {
	word  string
	delta float64
}{
	{"très", 0.2},
	{"vraiment", 0.2},
	{"extrêmement", 0.3},
	{"un peu", -0.2},
}

// detectImplicitEmotion returns ("", 0) when nothing matches. Intensity
// starts at 0.6 and is shifted by intensifier words, clamped to
// [0.2, 1.0].
func detectImplicitEmotion(low string) (string, float64) {
	detected := ""
	for _, entry := range implicitEmotions {
		for _, w := range entry.words {
			if strings.Contains(low, w) {
				detected = entry.emotion
				break
			}
		}
		if detected != "" {
			break
		}
	}
	if detected == "" {
		return "", 0
	}

	intensity := 0.6
	for _, in := range intensifiers {
		if strings.Contains(low, in.word) {
			intensity += in.delta
		}
	}
	if intensity < 0.2 {
		intensity = 0.2
	}
	if intensity > 1.0 {
		intensity = 1.0
	}
	return detected, intensity
}

var (
	createProjectRe   = regexp.MustCompile(`(?i)\b(crée|creer|créer)\b.*\bprojet\b`)
	activateProjectRe = regexp.MustCompile(`(?i)\b(active|travaille)\b.*\bprojet\b`)
	deleteProjectRe   = regexp.MustCompile(`(?i)\b(supprime|supprimer|suprime|efface)\b.*\bprojet\b`)
	listProjectsRe    = regexp.MustCompile(`(?i)^(liste|liste-moi|affiche).*(projets?)`)
	searchRe          = regexp.MustCompile(`(?i)^recherche\s+(.+)`)
	splitProjetRe     = regexp.MustCompile(`(?i)\bprojet\b`)
	splitEnRe         = regexp.MustCompile(`(?i)\ben\b`)
	uuidLikeRe        = regexp.MustCompile(`^[0-9a-fA-F-]{20,}$`)
)

// handleProjectCommand recognizes the project command family. The
// second return is false when the utterance is not a project command.
func (r *Router) handleProjectCommand(txt, low string) (string, bool) {
	switch {
	case createProjectRe.MatchString(low):
		return r.createProject(txt), true

	case activateProjectRe.MatchString(low):
		parts := splitProjetRe.Split(txt, 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			return "Quel projet dois-je activer ?", true
		}
		title := strings.TrimSpace(parts[1])
		p, ok := r.projects.FindByTitle(title)
		if !ok {
			return "Projet introuvable.", true
		}
		r.projects.SetCurrent(p.ID)
		return fmt.Sprintf("Projet actif : %s", p.Title), true

	case deleteProjectRe.MatchString(low):
		return r.deleteProject(txt, low), true

	case strings.Contains(low, "projet courant") || strings.Contains(low, "projet actif"):
		p, ok := r.projects.Current()
		if !ok {
			return "Aucun projet actif.", true
		}
		return fmt.Sprintf("Projet actuel : %s (thème : %s)", p.Title, orDash(p.Theme)), true

	case strings.Contains(low, "description") || strings.Contains(low, "décris"):
		return r.updateProjectDescription(txt, low), true

	case strings.Contains(low, "change le thème") || strings.Contains(low, "modifie le thème"):
		return r.updateProjectTheme(txt, low), true

	case listProjectsRe.MatchString(low):
		projects := r.projects.List()
		if len(projects) == 0 {
			return "Aucun projet enregistré.", true
		}
		lines := make([]string, 0, len(projects))
		for _, p := range projects {
			lines = append(lines, fmt.Sprintf("- %s (id: %s) — thème: %s", p.Title, p.ID, orDash(p.Theme)))
		}
		return "Projets :\n" + strings.Join(lines, "\n"), true

	case searchRe.MatchString(low):
		query := strings.TrimSpace(searchRe.FindStringSubmatch(txt)[1])
		results := r.projects.Search(query)
		if len(results) == 0 {
			return fmt.Sprintf("Aucun résultat pour : %s", query), true
		}
		lines := make([]string, 0, len(results))
		for _, p := range results {
			lines = append(lines, fmt.Sprintf("- %s (id: %s) — thème: %s", p.Title, p.ID, orDash(p.Theme)))
		}
		return "Résultats :\n" + strings.Join(lines, "\n"), true
	}

	return "", false
}

// createProject parses "crée un projet <titre> sur <thème> qui <description>".
func (r *Router) createProject(txt string) string {
	parts := splitProjetRe.Split(txt, 2)
	if len(parts) < 2 {
		return "Quel est le nom du projet ?"
	}
	rest := strings.TrimSpace(parts[1])

	title := rest
	theme := ""
	description := ""

	if idx := strings.Index(strings.ToLower(rest), " sur "); idx >= 0 {
		title = strings.TrimSpace(rest[:idx])
		after := rest[idx+len(" sur "):]
		if qidx := strings.Index(strings.ToLower(after), " qui "); qidx >= 0 {
			theme = strings.TrimSpace(after[:qidx])
			description = strings.TrimSpace(after[qidx+len(" qui "):])
		} else {
			theme = strings.TrimSpace(after)
		}
	} else if qidx := strings.Index(strings.ToLower(rest), " qui "); qidx >= 0 {
		title = strings.TrimSpace(rest[:qidx])
		description = strings.TrimSpace(rest[qidx+len(" qui "):])
	}

	p, err := r.projects.Add(title, description, theme)
	if err != nil {
		return fmt.Sprintf("Erreur : %v", err)
	}
	return fmt.Sprintf("Projet ajouté : %s", p.Title)
}

func (r *Router) deleteProject(txt, low string) string {
	// the active project first
	if strings.Contains(low, "actif") {
		current, ok := r.projects.Current()
		if !ok {
			return "Aucun projet actif à supprimer."
		}
		r.projects.Delete(current.ID)
		r.projects.SetCurrent("")
		return fmt.Sprintf("Projet supprimé : %s", current.Title)
	}

	parts := splitProjetRe.Split(txt, 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "Quel projet dois-je supprimer ?"
	}
	target := strings.TrimSpace(parts[1])

	if uuidLikeRe.MatchString(target) {
		removed, _ := r.projects.Delete(target)
		if removed {
			return "Projet supprimé."
		}
		return "Projet introuvable."
	}

	p, ok := r.projects.FindByTitle(target)
	if !ok {
		return "Projet introuvable."
	}
	r.projects.Delete(p.ID)

	if current, ok := r.projects.Current(); !ok || current.ID == p.ID {
		r.projects.SetCurrent("")
	}
	return fmt.Sprintf("Projet supprimé : %s", p.Title)
}

func (r *Router) updateProjectDescription(txt, low string) string {
	for _, p := range r.projects.List() {
		titleLow := strings.ToLower(p.Title)
		if !strings.Contains(low, titleLow) {
			continue
		}
		idx := strings.Index(low, titleLow)
		desc := strings.TrimSpace(txt[idx+len(p.Title):])
		if desc == "" {
			return "Quelle est la nouvelle description ?"
		}
		r.projects.UpdateDescription(p.ID, desc)
		return fmt.Sprintf("Description mise à jour pour %s", p.Title)
	}
	return "Projet introuvable pour modification."
}

func (r *Router) updateProjectTheme(txt, low string) string {
	for _, p := range r.projects.List() {
		if !strings.Contains(low, strings.ToLower(p.Title)) {
			continue
		}
		parts := splitEnRe.Split(txt, 2)
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			return "Quel est le nouveau thème ?"
		}
		newTheme := strings.TrimSpace(parts[1])
		r.projects.UpdateTheme(p.ID, newTheme)
		return fmt.Sprintf("Thème mis à jour pour %s", p.Title)
	}
	return "Projet introuvable."
}

// handleName answers name queries and declarations without the LLM.
func (r *Router) handleName(low string) (string, bool) {
	clean := strings.ReplaceAll(low, "m'appelle", "mappelle")

	if strings.Contains(clean, "comment je mappelle") {
		name := r.profile.Name()
		if name == "" {
			return "Je ne connais pas encore ton nom.", true
		}
		return fmt.Sprintf("Tu t'appelles %s.", name), true
	}

	if strings.Contains(clean, "je mappelle") && !strings.Contains(clean, "comment") {
		name := clean[strings.Index(clean, "mappelle")+len("mappelle"):]
		name = strings.TrimSpace(strings.NewReplacer("?", "", ".", "").Replace(name))
		if len([]rune(name)) >= 2 {
			if err := r.profile.SetName(name); err == nil {
				return fmt.Sprintf("D'accord %s, je m'en souviendrai.", r.profile.Name()), true
			}
		}
	}

	return "", false
}

// applyPersonalInfo runs the LLM extractor and writes any durable fact
// into the profile. The second return is false when nothing was stored.
func (r *Router) applyPersonalInfo(ctx context.Context, txt string) (string, bool) {
	info := r.planner.ExtractPersonalInfo(ctx, txt)
	if info.None() {
		return "", false
	}

	switch info.Type {
	case "name":
		if err := r.profile.SetName(info.Value); err != nil {
			return "", false
		}
		return fmt.Sprintf("D'accord %s, je m'en souviendrai.", r.profile.Name()), true

	case "location":
		if err := r.profile.SetLocation(info.Value); err != nil {
			return "", false
		}
		return fmt.Sprintf("Très bien, tu habites à %s.", r.profile.Location()), true

	case "relation":
		rel := strings.ToLower(info.Key)
		if rel == "" {
			rel = "proche"
		}
		if err := r.profile.SetRelation(rel, info.Value); err != nil {
			return "", false
		}
		return fmt.Sprintf("Je retiens que ton/ta %s s'appelle %s.", rel, r.profile.Relation(rel)), true

	case "project":
		if err := r.profile.AddProject(info.Value); err != nil {
			return "", false
		}
		return fmt.Sprintf("Je note ton projet : %s.", info.Value), true

	case "preference":
		valLow := strings.ToLower(info.Value)
		keyLow := strings.ToLower(info.Key)

		switch {
		case strings.Contains(valLow, "court"):
			r.profile.SetPreference("style", "court", 0.9)
		case strings.Contains(valLow, "long") || strings.Contains(valLow, "detail") || strings.Contains(valLow, "détail"):
			r.profile.SetPreference("style", "detaille", 0.9)
		case keyLow == "réponse" || keyLow == "réponses" || keyLow == "style" || keyLow == "format":
			r.profile.SetPreference("style", valLow, 0.8)
		default:
			if keyLow == "" {
				keyLow = "general"
			}
			r.profile.SetPreference(keyLow, info.Value, 0.7)
		}
		return "Préférence enregistrée.", true

	case "emotion":
		r.profile.SetEmotion(info.Value, 0.8)
		r.profile.UpdateEmotionPattern(txt, info.Value)
		return "Je comprends comment tu te sens.", true
	}

	return "", false
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
