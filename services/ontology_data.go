package services

// Static agronomy tables backing the ontology service. Values follow
// published agronomic guidance for Indian growing conditions.

func cropDatabase() map[string]CropProfile {
	return map[string]CropProfile{
		"rice": {
			Name:           "Rice (Paddy)",
			ScientificName: "Oryza sativa",
			GrowthStages: []GrowthStage{
				{Stage: "germination", Days: "0-10", CriticalFactors: []string{"temperature", "moisture"}},
				{Stage: "seedling", Days: "10-30", CriticalFactors: []string{"nutrients", "water"}},
				{Stage: "tillering", Days: "30-50", CriticalFactors: []string{"nitrogen", "water"}},
				{Stage: "stem_elongation", Days: "50-70", CriticalFactors: []string{"water", "nutrients"}},
				{Stage: "panicle_initiation", Days: "70-90", CriticalFactors: []string{"phosphorus", "water"}},
				{Stage: "flowering", Days: "90-110", CriticalFactors: []string{"temperature", "humidity"}},
				{Stage: "grain_filling", Days: "110-130", CriticalFactors: []string{"water", "temperature"}},
				{Stage: "maturity", Days: "130-150", CriticalFactors: []string{"drying"}},
			},
			OptimalConditions: OptimalConditions{
				Temperature:  Range{Min: 20, Max: 35, Optimal: 25},
				SoilMoisture: Range{Min: 60, Max: 100, Optimal: 80},
				Humidity:     Range{Min: 50, Max: 90, Optimal: 70},
				PH:           Range{Min: 5.5, Max: 7.0, Optimal: 6.5},
			},
			CommonDiseases:   []string{"blast", "bacterial_blight", "sheath_blight", "brown_spot"},
			WaterRequirement: "high",
			FertilizerSchedule: map[string]NPK{
				"basal":     {N: 40, P: 20, K: 20},
				"tillering": {N: 30, P: 0, K: 0},
				"panicle":   {N: 30, P: 10, K: 10},
			},
		},

		"wheat": {
			Name:           "Wheat",
			ScientificName: "Triticum aestivum",
			GrowthStages: []GrowthStage{
				{Stage: "germination", Days: "0-7", CriticalFactors: []string{"moisture", "temperature"}},
				{Stage: "seedling", Days: "7-21", CriticalFactors: []string{"nutrients"}},
				{Stage: "tillering", Days: "21-45", CriticalFactors: []string{"nitrogen"}},
				{Stage: "stem_extension", Days: "45-70", CriticalFactors: []string{"water", "nutrients"}},
				{Stage: "booting", Days: "70-85", CriticalFactors: []string{"water"}},
				{Stage: "heading", Days: "85-100", CriticalFactors: []string{"temperature"}},
				{Stage: "flowering", Days: "100-110", CriticalFactors: []string{"temperature", "humidity"}},
				{Stage: "grain_filling", Days: "110-130", CriticalFactors: []string{"water"}},
				{Stage: "maturity", Days: "130-150", CriticalFactors: []string{"drying"}},
			},
			OptimalConditions: OptimalConditions{
				Temperature:  Range{Min: 12, Max: 25, Optimal: 20},
				SoilMoisture: Range{Min: 40, Max: 70, Optimal: 55},
				Humidity:     Range{Min: 40, Max: 70, Optimal: 55},
				PH:           Range{Min: 6.0, Max: 7.5, Optimal: 6.5},
			},
			CommonDiseases:   []string{"rust", "powdery_mildew", "septoria", "fusarium"},
			WaterRequirement: "moderate",
			FertilizerSchedule: map[string]NPK{
				"basal":     {N: 50, P: 30, K: 20},
				"tillering": {N: 40, P: 0, K: 0},
				"booting":   {N: 30, P: 0, K: 10},
			},
		},

		"cotton": {
			Name:           "Cotton",
			ScientificName: "Gossypium hirsutum",
			GrowthStages: []GrowthStage{
				{Stage: "germination", Days: "0-10", CriticalFactors: []string{"temperature", "moisture"}},
				{Stage: "seedling", Days: "10-30", CriticalFactors: []string{"nutrients"}},
				{Stage: "squaring", Days: "30-60", CriticalFactors: []string{"nitrogen", "water"}},
				{Stage: "flowering", Days: "60-90", CriticalFactors: []string{"water", "temperature"}},
				{Stage: "boll_development", Days: "90-120", CriticalFactors: []string{"water", "nutrients"}},
				{Stage: "boll_opening", Days: "120-150", CriticalFactors: []string{"drying"}},
				{Stage: "maturity", Days: "150-180", CriticalFactors: []string{"drying"}},
			},
			OptimalConditions: OptimalConditions{
				Temperature:  Range{Min: 21, Max: 37, Optimal: 28},
				SoilMoisture: Range{Min: 50, Max: 75, Optimal: 60},
				Humidity:     Range{Min: 50, Max: 80, Optimal: 65},
				PH:           Range{Min: 6.0, Max: 8.0, Optimal: 7.0},
			},
			CommonDiseases:   []string{"bollworm", "fusarium_wilt", "bacterial_blight", "leaf_curl"},
			WaterRequirement: "high",
			FertilizerSchedule: map[string]NPK{
				"basal":     {N: 40, P: 40, K: 20},
				"squaring":  {N: 40, P: 0, K: 20},
				"flowering": {N: 30, P: 0, K: 20},
			},
		},

		"tomato": {
			Name:           "Tomato",
			ScientificName: "Solanum lycopersicum",
			GrowthStages: []GrowthStage{
				{Stage: "germination", Days: "0-10", CriticalFactors: []string{"temperature", "moisture"}},
				{Stage: "seedling", Days: "10-25", CriticalFactors: []string{"light", "nutrients"}},
				{Stage: "vegetative", Days: "25-50", CriticalFactors: []string{"nitrogen", "water"}},
				{Stage: "flowering", Days: "50-70", CriticalFactors: []string{"phosphorus", "temperature"}},
				{Stage: "fruit_set", Days: "70-90", CriticalFactors: []string{"water", "calcium"}},
				{Stage: "fruit_development", Days: "90-120", CriticalFactors: []string{"water", "potassium"}},
				{Stage: "ripening", Days: "120-140", CriticalFactors: []string{"temperature"}},
			},
			OptimalConditions: OptimalConditions{
				Temperature:  Range{Min: 18, Max: 29, Optimal: 24},
				SoilMoisture: Range{Min: 60, Max: 80, Optimal: 70},
				Humidity:     Range{Min: 60, Max: 85, Optimal: 70},
				PH:           Range{Min: 6.0, Max: 6.8, Optimal: 6.5},
			},
			CommonDiseases:   []string{"early_blight", "late_blight", "fusarium_wilt", "bacterial_spot"},
			WaterRequirement: "moderate",
			FertilizerSchedule: map[string]NPK{
				"basal":      {N: 30, P: 50, K: 30},
				"vegetative": {N: 40, P: 0, K: 0},
				"flowering":  {N: 20, P: 20, K: 40},
			},
		},
	}
}

func diseaseDatabase() map[string]DiseaseProfile {
	return map[string]DiseaseProfile{
		"blast": {
			Name:     "Rice Blast",
			Crops:    []string{"rice"},
			Pathogen: "Magnaporthe oryzae",
			FavorableConditions: FavorableConditions{
				Temperature:      Range{Min: 25, Max: 28},
				Humidity:         Range{Min: 85, Max: 100},
				LeafWetnessHours: 8,
			},
			Symptoms:        []string{"diamond-shaped lesions", "gray center", "brown margins"},
			Severity:        "high",
			ControlMeasures: []string{"fungicide spray", "resistant varieties", "balanced fertilization"},
		},

		"rust": {
			Name:     "Wheat Rust",
			Crops:    []string{"wheat"},
			Pathogen: "Puccinia spp.",
			FavorableConditions: FavorableConditions{
				Temperature:      Range{Min: 15, Max: 22},
				Humidity:         Range{Min: 70, Max: 100},
				LeafWetnessHours: 6,
			},
			Symptoms:        []string{"orange-red pustules", "leaf yellowing", "premature drying"},
			Severity:        "high",
			ControlMeasures: []string{"fungicide spray", "resistant varieties", "early sowing"},
		},

		"bollworm": {
			Name:     "Cotton Bollworm",
			Crops:    []string{"cotton"},
			Pathogen: "Helicoverpa armigera",
			FavorableConditions: FavorableConditions{
				Temperature: Range{Min: 25, Max: 30},
				Humidity:    Range{Min: 60, Max: 80},
			},
			Symptoms:        []string{"boll damage", "larval presence", "flower drop"},
			Severity:        "high",
			ControlMeasures: []string{"Bt cotton", "pheromone traps", "insecticide spray"},
		},

		"late_blight": {
			Name:     "Late Blight",
			Crops:    []string{"tomato", "potato"},
			Pathogen: "Phytophthora infestans",
			FavorableConditions: FavorableConditions{
				Temperature:      Range{Min: 10, Max: 25},
				Humidity:         Range{Min: 90, Max: 100},
				LeafWetnessHours: 12,
			},
			Symptoms:        []string{"water-soaked lesions", "white fungal growth", "fruit rot"},
			Severity:        "very_high",
			ControlMeasures: []string{"fungicide spray", "remove infected plants", "improve drainage"},
		},
	}
}

func regionalAdaptations() map[string]RegionalAdaptation {
	return map[string]RegionalAdaptation{
		"punjab": {
			Region:     "Punjab",
			Climate:    "semi-arid",
			MajorCrops: []string{"wheat", "rice", "cotton"},
			Adaptations: map[string]map[string]string{
				"rice":  {"waterManagement": "critical", "pest": "stem_borer_high"},
				"wheat": {"sowingWindow": "nov_1_to_20", "variety": "PBW_343"},
			},
		},
		"maharashtra": {
			Region:     "Maharashtra",
			Climate:    "tropical",
			MajorCrops: []string{"cotton", "sugarcane", "soybean"},
			Adaptations: map[string]map[string]string{
				"cotton": {"bollwormRisk": "very_high", "btCotton": "recommended"},
			},
		},
		"kerala": {
			Region:     "Kerala",
			Climate:    "tropical_humid",
			MajorCrops: []string{"rice", "coconut", "rubber"},
			Adaptations: map[string]map[string]string{
				"rice": {"diseaseRisk": "high_humidity_diseases", "drainage": "critical"},
			},
		},
	}
}
