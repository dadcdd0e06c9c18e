package theme

import "StockLens/internal/model"

func init() {
	register(&Theme{
		Name:  Default,
		Title: "Financial ML",
		Palette: map[string]string{
			"--primary-color":    "#1f77b4",
			"--secondary-color":  "#ff7f0e",
			"--text-color":       "#262730",
			"--background-color": "#ffffff",
		},
		Fonts: map[string]string{},
		Headlines: [3]string{
			"Results are in.",
			"Results are in.",
			"Results are in.",
		},
		Verdicts: map[model.AnalysisMode][3]string{
			model.ModeRegression:     {"The fit is weak.", "The fit is moderate.", "The fit is strong."},
			model.ModeClassification: {"Predictions are mostly wrong.", "Predictions beat a coin flip.", "Predictions are mostly right."},
			model.ModeClustering:     {"Clusters overlap heavily.", "Clusters are somewhat separated.", "Clusters are well separated."},
		},
	})

	register(&Theme{
		Name:  "zombie",
		Title: "Zombie Financial Apocalypse",
		Palette: map[string]string{
			"--primary-color":    "#2d2d2d",
			"--secondary-color":  "#4a0000",
			"--accent-color":     "#e0e0e0",
			"--text-color":       "#e0e0e0",
			"--background-color": "#1a1a1a",
			"--warning-color":    "#ff4500",
			"--success-color":    "#00ff00",
			"--error-color":      "#ff0000",
		},
		Fonts: map[string]string{
			"Creepster": "https://fonts.googleapis.com/css2?family=Creepster&display=swap",
			"Nosifer":   "https://fonts.googleapis.com/css2?family=Nosifer&display=swap",
		},
		Headlines: [3]string{
			"THE DEAD HAVE SPOKEN!",
			"THE WALKING DEAD HAVE SPOKEN!",
			"THE UNDEAD HAVE SPOKEN!",
		},
		Verdicts: map[model.AnalysisMode][3]string{
			model.ModeRegression: {
				"Your regression model seems to be... well, dead.",
				"Your regression model shows signs of life.",
				"Your regression model has risen from the grave with terrifying accuracy!",
			},
			model.ModeClassification: {
				"Your classifier is completely lost.",
				"Your classifier shows signs of life but is a bit confused.",
				"Your classifier has risen with terrifying precision!",
			},
			model.ModeClustering: {
				"The market is a chaotic mess of wandering corpses.",
				"Some wandering groups roam the market.",
				"Distinct hordes roam the market!",
			},
		},
	})

	register(&Theme{
		Name:  "futuristic",
		Title: "Neon Market Terminal",
		Palette: map[string]string{
			"--primary-color":    "#00ff9d",
			"--secondary-color":  "#0066ff",
			"--text-color":       "#ffffff",
			"--background-color": "#000000",
		},
		Fonts: map[string]string{
			"Orbitron": "https://fonts.googleapis.com/css2?family=Orbitron:wght@400;500;700&display=swap",
		},
		Headlines: [3]string{
			"SIGNAL DEGRADED.",
			"SIGNAL ACQUIRED.",
			"SIGNAL LOCKED.",
		},
		Verdicts: map[model.AnalysisMode][3]string{
			model.ModeRegression: {
				"Trajectory model needs recalibration.",
				"Trajectory model is tracking within tolerance.",
				"Trajectory model is locked on target.",
			},
			model.ModeClassification: {
				"Direction classifier output is noise.",
				"Direction classifier is above baseline.",
				"Direction classifier is operating at peak efficiency.",
			},
			model.ModeClustering: {
				"Sectors bleed into each other.",
				"Sectors are partially resolved.",
				"Sectors are cleanly partitioned.",
			},
		},
	})

	register(&Theme{
		Name:  "got",
		Title: "Game of Thrones",
		Palette: map[string]string{
			"--primary-color":    "#8b0000",
			"--secondary-color":  "#4682b4",
			"--text-color":       "#d4af37",
			"--background-color": "#2f4f4f",
		},
		Fonts: map[string]string{
			"UnifrakturCook": "https://fonts.googleapis.com/css2?family=UnifrakturCook:wght@700&display=swap",
			"MedievalSharp":  "https://fonts.googleapis.com/css2?family=MedievalSharp&display=swap",
		},
		Headlines: [3]string{
			"Winter has come.",
			"The realm holds.",
			"A Lannister always pays his debts.",
		},
		Verdicts: map[model.AnalysisMode][3]string{
			model.ModeRegression: {
				"The maesters' forecast is worthless.",
				"The maesters' forecast is fair.",
				"The maesters' forecast is true as Valyrian steel.",
			},
			model.ModeClassification: {
				"The ravens carry false news.",
				"Most ravens arrive with the truth.",
				"Every raven arrives with the truth.",
			},
			model.ModeClustering: {
				"The great houses are indistinguishable.",
				"The great houses are taking shape.",
				"The great houses stand apart.",
			},
		},
	})

	register(&Theme{
		Name:  "gaming",
		Title: "Market Arcade",
		Palette: map[string]string{
			"--primary-color":    "#ff00ff",
			"--secondary-color":  "#00ff00",
			"--text-color":       "#ffffff",
			"--background-color": "#000000",
		},
		Fonts: map[string]string{
			"Press Start 2P": "https://fonts.googleapis.com/css2?family=Press+Start+2P&display=swap",
		},
		Headlines: [3]string{
			"GAME OVER.",
			"LEVEL CLEARED.",
			"HIGH SCORE!",
		},
		Verdicts: map[model.AnalysisMode][3]string{
			model.ModeRegression: {
				"Your predictor missed every jump.",
				"Your predictor made it through with a few hits.",
				"Your predictor speedran the chart.",
			},
			model.ModeClassification: {
				"Wrong direction on most moves.",
				"More hits than misses.",
				"Combo streak on market moves.",
			},
			model.ModeClustering: {
				"Teams are all mixed up.",
				"Teams are forming.",
				"Teams are perfectly split.",
			},
		},
	})
}
