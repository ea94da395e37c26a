package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type entry struct {
	key  string
	msgs map[language.Tag]string
}

var entries = []entry{
	{"Mempool", map[language.Tag]string{
		language.Spanish:    "Mempool",
		language.German:     "Mempool",
		language.French:     "Mempool",
		language.Italian:    "Mempool",
		language.Portuguese: "Mempool",
	}},
	{"By", map[language.Tag]string{
		language.Spanish:    "Por",
		language.German:     "Von",
		language.French:     "Par",
		language.Italian:    "Di",
		language.Portuguese: "Por",
	}},
	{"Translated by", map[language.Tag]string{
		language.Spanish:    "Traducido por",
		language.German:     "Übersetzt von",
		language.French:     "Traduit par",
		language.Italian:    "Tradotto da",
		language.Portuguese: "Traduzido por",
	}},
	{"Originally published at", map[language.Tag]string{
		language.Spanish:    "Publicado originalmente en",
		language.German:     "Ursprünglich veröffentlicht auf",
		language.French:     "Publié à l'origine sur",
		language.Italian:    "Pubblicato originariamente su",
		language.Portuguese: "Publicado originalmente em",
	}},
	{"Translation originally published at", map[language.Tag]string{
		language.Spanish:    "Traducción publicada originalmente en",
		language.German:     "Übersetzung ursprünglich veröffentlicht auf",
		language.French:     "Traduction publiée à l'origine sur",
		language.Italian:    "Traduzione pubblicata originariamente su",
		language.Portuguese: "Tradução publicada originalmente em",
	}},
	{"Chapter %d", map[language.Tag]string{
		language.Spanish:    "Capítulo %d",
		language.German:     "Kapitel %d",
		language.French:     "Chapitre %d",
		language.Italian:    "Capitolo %d",
		language.Portuguese: "Capítulo %d",
	}},
	{"Languages", map[language.Tag]string{
		language.Spanish:    "Idiomas",
		language.German:     "Sprachen",
		language.French:     "Langues",
		language.Italian:    "Lingue",
		language.Portuguese: "Idiomas",
	}},
	{"No posts yet.", map[language.Tag]string{
		language.Spanish:    "Todavía no hay artículos.",
		language.German:     "Noch keine Beiträge.",
		language.French:     "Aucun article pour le moment.",
		language.Italian:    "Ancora nessun articolo.",
		language.Portuguese: "Ainda não há artigos.",
	}},
	{"Page not found", map[language.Tag]string{
		language.Spanish:    "Página no encontrada",
		language.German:     "Seite nicht gefunden",
		language.French:     "Page introuvable",
		language.Italian:    "Pagina non trovata",
		language.Portuguese: "Página não encontrada",
	}},
	{"Back to the mempool", map[language.Tag]string{
		language.Spanish:    "Volver al mempool",
		language.German:     "Zurück zum Mempool",
		language.French:     "Retour au mempool",
		language.Italian:    "Torna al mempool",
		language.Portuguese: "Voltar ao mempool",
	}},
}

func init() {
	for _, e := range entries {
		for tag, msg := range e.msgs {
			if err := message.SetString(tag, e.key, msg); err != nil {
				panic(err)
			}
		}
	}
}
