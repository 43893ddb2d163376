package journal

import (
	"log"
	"regexp"
	"strings"
)

// Channel identifies one notification destination.
type Channel string

const (
	ChannelEvents   Channel = "events"
	ChannelStats    Channel = "stats"
	ChannelTunnel   Channel = "tunnel"
	ChannelWar      Channel = "war"
	ChannelCrime    Channel = "crime"
	ChannelResearch Channel = "research"
	ChannelSpeeches Channel = "speeches"
	ChannelRumors   Channel = "rumors"
	ChannelPolitics Channel = "politics"
	ChannelFinance  Channel = "finance"
)

// Rule matches folded event text against a keyword set, regex patterns, or a
// custom predicate, and names the channel a match routes to.
type Rule struct {
	Name     string
	Keywords []string
	Patterns []*regexp.Regexp
	// Match is an optional extra predicate over the folded text.
	Match   func(text string) bool
	Channel Channel
}

// Router evaluates an ordered rule list, first match wins. Rule order is
// part of the contract: a broad money-themed rule placed before a narrower
// one would shadow it.
type Router struct {
	rules    []Rule
	fallback Channel
}

func NewRouter(rules []Rule, fallback Channel) *Router {
	return &Router{rules: rules, fallback: fallback}
}

// Route returns the channel for an event's text. A faulting rule predicate
// is logged and treated as non-matching; evaluation continues with the next
// rule. Unmatched text falls back to the default channel.
func (r *Router) Route(text string) Channel {
	folded := NormalizeKey(text)
	for _, rule := range r.rules {
		matched, err := evalRule(rule, folded)
		if err != nil {
			log.Printf("route: rule %q fault (treated as no match): %v", rule.Name, err)
			continue
		}
		if matched {
			return rule.Channel
		}
	}
	return r.fallback
}

// evalRule isolates one rule evaluation so a panicking predicate is reported
// as a rule fault, distinguishable in logs from a legitimate non-match.
func evalRule(rule Rule, folded string) (matched bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			matched = false
			err = recoveredError{rec}
		}
	}()
	for _, kw := range rule.Keywords {
		if strings.Contains(folded, kw) {
			return true, nil
		}
	}
	for _, re := range rule.Patterns {
		if re.MatchString(folded) {
			return true, nil
		}
	}
	if rule.Match != nil && rule.Match(folded) {
		return true, nil
	}
	return false, nil
}

type recoveredError struct{ v any }

func (e recoveredError) Error() string {
	if err, ok := e.v.(error); ok {
		return err.Error()
	}
	return "panic in rule predicate"
}

// DefaultRules is the production route table. Keywords are written in folded
// form (see NormalizeKey) because matching happens against folded text.
// Order matters: Crime precedes Finance so that fine and embezzlement events
// stay in the crime channel even though they mention money.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "Tunnel",
			Keywords: []string{"tunnel termondique de magnitude"},
			Channel:  ChannelTunnel,
		},
		{
			Name:     "War",
			Keywords: []string{"declare la guerre"},
			Channel:  ChannelWar,
		},
		{
			Name: "Crime",
			Keywords: []string{
				"a tente de voler",
				"vient d'achever sa peine",
				"vient de se livrer aux autorites",
				"vient de livrer",
				"a ecrit des graffitis sur le mur",
				"a tente de commettre un attentat",
				"a annule les poursuites contre",
				"a aide les policiers",
				"a lance un avis de recherche contre",
				"vient de se faire assassiner",
				"a conduit dans la prison",
				"des policiers interviennent",
				"un groupe de policiers tente",
				"a impose une amende",
				"a tente de detourner de l'argent",
			},
			Channel: ChannelCrime,
		},
		{
			Name: "Research",
			Keywords: []string{
				"a brule par erreur des notes scientifiques",
				"a fixe le salaire pour la recherche technologique",
				"a lance la recherche de la technologie",
				"a donne des informations concernant la technologie",
				"a decouvert la technologie",
				"a fait perdre des fichiers precieux a la recherche scientifique",
				"en tentant d'organiser une manifestation pro-science",
				"a organise une manifestation pro-science",
				"en tentant d'organiser une manifestation anti-science",
				"a organise une manifestation anti-science",
			},
			Channel: ChannelResearch,
		},
		{
			Name: "Speeches",
			Keywords: []string{
				"a adresse un discours",
				"a prononce un discours",
				"a fait la declaration officielle",
			},
			Channel: ChannelSpeeches,
		},
		{
			Name: "Rumors",
			Keywords: []string{
				"une rumeur court",
				"une rumeur concernant",
				"il se murmure",
			},
			Channel: ChannelRumors,
		},
		{
			Name: "Politics",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`a nomme .+ au poste de`),
				regexp.MustCompile(`coup d'etat .+ a usurpe`),
				regexp.MustCompile(`les services .+ sont debordes par`),
			},
			Keywords: []string{
				"a perdu son poste",
				"a demissionne",
				"a effectue un sondage",
				"s'est verse une prime",
				"a organise une manifestation contre",
				"a organise une manifestation en soutien",
				"a retire sa candidature",
				"a bafouille un discours",
				"a accorde la recompense",
				"a use de ses prerogatives de",
				"n'a pas reussi a utiliser ses prerogatives",
				"a approuve les actions du gouvernement",
				"a prete allegeance envers",
				"s'est presente aux elections",
				"s'est presentee aux elections",
				"resultat de l'election au poste",
			},
			Channel: ChannelPolitics,
		},
		{
			Name: "Finance",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`a verse .+ au`),
			},
			Keywords: []string{
				"vient de modifier la taxe fonciere",
				"vient de modifier le taux d'imposition",
				"vient de modifier l'impot",
				"a defini une nouvelle repartition budgetaire",
				"a pris la decision d'appliquer une prime",
				"a pris la decision d'appliquer une taxe",
				"a impose une taxe",
				"a verse une prime de",
			},
			Channel: ChannelFinance,
		},
	}
}
