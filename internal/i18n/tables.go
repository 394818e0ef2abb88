package i18n

// Label and disease tables for every supported language.

var labels = map[string]map[Key]string{
	"en": {
		"title":                  "Crop Disease Detection",
		"subtitle":               "Upload or take a photo of a crop leaf to detect diseases",
		"uploadTab":              "Upload Image",
		"cameraTab":              "Take Photo",
		"detectBtn":              "Detect Disease",
		"switchCamera":           "Switch Camera",
		"capture":                "Capture",
		"retake":                 "Retake",
		"preview":                "Preview:",
		"processingOptions":      "Image Processing Options:",
		"enhanceContrast":        "Enhance Contrast",
		"autoCrop":               "Auto Crop Leaf",
		"predictionResult":       "Prediction Result",
		"confidence":             "Confidence",
		"preventionSteps":        "Prevention Steps",
		"lowConfidenceWarning":   "The model is not very confident about this prediction. Here are the top possible diseases:",
		"noPreventionSteps":      "No prevention steps available for this condition.",
		"analyzing":              "Analyzing image...",
		"error":                  "An error occurred. Please try again.",
		"selectImage":            "Please select an image first",
		"selectImageLabel":       "Select a leaf image to detect disease",
		"cameraError":            "Failed to access camera: ",
		"cameraSwitchError":      "Failed to switch camera: ",
		"speakResults":           "Listen to Results",
		"stopSpeaking":           "Stop Speaking",
		"languageSelect":         "Language",
		"dragDropText":           "Drag & drop your image here or click to browse",
		"imagePreview":           "Image Preview",
		"severityHigh":           "High Severity",
		"severityMedium":         "Medium Severity",
		"severityLow":            "Low Severity",
		"darkMode":               "Dark Mode",
		"lightMode":              "Light Mode",
		"feedbackTitle":          "Help Improve Our Model",
		"feedbackDescription":    "Is this prediction correct? Your feedback helps us improve.",
		"correctPrediction":      "Correct",
		"incorrectPrediction":    "Incorrect",
		"correctionPrompt":       "What's the correct disease?",
		"contributeToDataset":    "Contribute this image to improve the dataset",
		"submitCorrection":       "Submit Correction",
		"feedbackThanks":         "Thank you for your feedback!",
		"insightsTitle":          "Disease Trends & Insights",
		"commonDiseasesTitle":    "Common Diseases in Your Region",
		"seasonalTrendsTitle":    "Seasonal Disease Trends",
		"recentSubmissionsTitle": "Recent Community Submissions",
		"insightsNote":           "These insights are generated from anonymized user contributions.\nThank you for being part of our community!",
		"viewInsights":           "View Community Insights",
		"noInsightsAvailable":    "No insights available yet. Be the first to contribute!",
		"submittedOn":            "Submitted on",
		"location":               "Location",
		"selectDisease":          "Select disease...",
		"feedbackError":          "Error submitting feedback. Please try again.",
	},
	"es": {
		"title":                  "Detección de Enfermedades de Cultivos",
		"subtitle":               "Sube o toma una foto de una hoja de cultivo para detectar enfermedades",
		"uploadTab":              "Subir Imagen",
		"cameraTab":              "Tomar Foto",
		"detectBtn":              "Detectar Enfermedad",
		"switchCamera":           "Cambiar Cámara",
		"capture":                "Capturar",
		"retake":                 "Volver a Tomar",
		"preview":                "Vista previa:",
		"processingOptions":      "Opciones de Procesamiento de Imagen:",
		"enhanceContrast":        "Mejorar Contraste",
		"autoCrop":               "Auto-recortar Hoja",
		"predictionResult":       "Resultado de la Predicción",
		"confidence":             "Confianza",
		"preventionSteps":        "Pasos de Prevención",
		"lowConfidenceWarning":   "El modelo no está muy seguro sobre esta predicción. Aquí están las posibles enfermedades:",
		"noPreventionSteps":      "No hay pasos de prevención disponibles para esta condición.",
		"analyzing":              "Analizando imagen...",
		"error":                  "Ocurrió un error. Por favor, intenta nuevamente.",
		"selectImage":            "Por favor, seleccione una imagen primero",
		"selectImageLabel":       "Seleccione una imagen de hoja para detectar enfermedad",
		"cameraError":            "Error al acceder a la cámara: ",
		"cameraSwitchError":      "Error al cambiar la cámara: ",
		"speakResults":           "Escuchar Resultados",
		"stopSpeaking":           "Detener Voz",
		"languageSelect":         "Idioma",
		"dragDropText":           "Arrastra y suelta tu imagen aquí o haz clic para navegar",
		"imagePreview":           "Vista Previa de Imagen",
		"severityHigh":           "Severidad Alta",
		"severityMedium":         "Severidad Media",
		"severityLow":            "Severidad Baja",
		"darkMode":               "Modo Oscuro",
		"lightMode":              "Modo Claro",
		"feedbackTitle":          "Ayuda a Mejorar Nuestro Modelo",
		"feedbackDescription":    "¿Es correcta esta predicción? Tu retroalimentación nos ayuda a mejorar.",
		"correctPrediction":      "Correcta",
		"incorrectPrediction":    "Incorrecta",
		"correctionPrompt":       "¿Cuál es la enfermedad correcta?",
		"contributeToDataset":    "Contribuir con esta imagen para mejorar el conjunto de datos",
		"submitCorrection":       "Enviar Corrección",
		"feedbackThanks":         "¡Gracias por tu retroalimentación!",
		"insightsTitle":          "Tendencias e Información sobre Enfermedades",
		"commonDiseasesTitle":    "Enfermedades Comunes en Tu Región",
		"seasonalTrendsTitle":    "Tendencias Estacionales de Enfermedades",
		"recentSubmissionsTitle": "Contribuciones Recientes de la Comunidad",
		"insightsNote":           "Esta información se genera a partir de contribuciones anónimas de usuarios.\n¡Gracias por ser parte de nuestra comunidad!",
		"viewInsights":           "Ver Información de la Comunidad",
		"noInsightsAvailable":    "Aún no hay información disponible. ¡Sé el primero en contribuir!",
		"submittedOn":            "Enviado el",
		"location":               "Ubicación",
		"selectDisease":          "Seleccionar enfermedad...",
		"feedbackError":          "Error al enviar comentarios. Por favor, inténtelo de nuevo.",
	},
	"hi": {
		"title":                  "फसल रोग पहचान",
		"subtitle":               "रोगों का पता लगाने के लिए फसल के पत्ते की तस्वीर अपलोड करें या खींचें",
		"uploadTab":              "छवि अपलोड करें",
		"cameraTab":              "फोटो लें",
		"detectBtn":              "रोग का पता लगाएं",
		"switchCamera":           "कैमरा बदलें",
		"capture":                "कैप्चर करें",
		"retake":                 "पुनः लें",
		"preview":                "पूर्वावलोकन:",
		"processingOptions":      "छवि प्रसंस्करण विकल्प:",
		"enhanceContrast":        "कंट्रास्ट बढ़ाएं",
		"autoCrop":               "पत्ता स्वतः क्रॉप करें",
		"predictionResult":       "पूर्वानुमान परिणाम",
		"confidence":             "विश्वास स्तर",
		"preventionSteps":        "रोकथाम के उपाय",
		"lowConfidenceWarning":   "मॉडल को इस पूर्वानुमान पर बहुत विश्वास नहीं है। यहां संभावित रोग हैं:",
		"noPreventionSteps":      "इस स्थिति के लिए कोई रोकथाम उपाय उपलब्ध नहीं हैं।",
		"analyzing":              "छवि का विश्लेषण कर रहा है...",
		"error":                  "एक त्रुटि हुई। कृपया पुनः प्रयास करें।",
		"selectImage":            "कृपया पहले एक छवि चुनें",
		"selectImageLabel":       "रोग का पता लगाने के लिए एक पत्ती की छवि चुनें",
		"cameraError":            "कैमरा तक पहुंचने में विफल: ",
		"cameraSwitchError":      "कैमरा बदलने में विफल: ",
		"speakResults":           "परिणाम सुनें",
		"stopSpeaking":           "बोलना बंद करें",
		"languageSelect":         "भाषा",
		"dragDropText":           "यहां अपनी छवि खींचें और छोड़ें या ब्राउज़ करने के लिए क्लिक करें",
		"imagePreview":           "छवि पूर्वावलोकन",
		"severityHigh":           "उच्च गंभीरता",
		"severityMedium":         "मध्यम गंभीरता",
		"severityLow":            "निम्न गंभीरता",
		"darkMode":               "डार्क मोड",
		"lightMode":              "लाइट मोड",
		"feedbackTitle":          "हमारे मॉडल को बेहतर बनाने में मदद करें",
		"feedbackDescription":    "क्या यह पूर्वानुमान सही है? आपकी प्रतिक्रिया हमें सुधारने में मदद करती है।",
		"correctPrediction":      "सही है",
		"incorrectPrediction":    "गलत है",
		"correctionPrompt":       "सही रोग क्या है?",
		"contributeToDataset":    "डेटासेट को बेहतर बनाने के लिए इस छवि का योगदान दें",
		"submitCorrection":       "सुधार जमा करें",
		"feedbackThanks":         "आपकी प्रतिक्रिया के लिए धन्यवाद!",
		"insightsTitle":          "रोग प्रवृत्तियां और जानकारी",
		"commonDiseasesTitle":    "आपके क्षेत्र में सामान्य रोग",
		"seasonalTrendsTitle":    "मौसमी रोग प्रवृत्तियां",
		"recentSubmissionsTitle": "समुदाय के हाल के योगदान",
		"insightsNote":           "यह जानकारी उपयोगकर्ताओं के बेनामी योगदानों से उत्पन्न होती है।\nहमारे समुदाय का हिस्सा बनने के लिए धन्यवाद!",
		"viewInsights":           "समुदाय अंतर्दृष्टि देखें",
		"noInsightsAvailable":    "अभी तक कोई अंतर्दृष्टि उपलब्ध नहीं है। योगदान देने वाले पहले व्यक्ति बनें!",
		"submittedOn":            "प्रस्तुत किया गया",
		"location":               "स्थान",
		"selectDisease":          "रोग चुनें...",
		"feedbackError":          "प्रतिक्रिया भेजने में त्रुटि। कृपया पुनः प्रयास करें।",
	},
}

var diseases = map[string]disease{
	"Potato__early_blight": {
		names: map[string]string{
			"en": "Potato Early Blight",
			"es": "Tizón Temprano de la Papa",
			"hi": "आलू का अगेती झुलसा",
		},
		prevention: map[string][]string{
			"en": {
				"Use disease-free seed potatoes",
				"Practice crop rotation",
				"Remove and destroy infected plants",
				"Apply fungicides preventively",
				"Maintain proper plant spacing",
			},
			"es": {
				"Utilizar papas de siembra libres de enfermedades",
				"Practicar rotación de cultivos",
				"Eliminar y destruir plantas infectadas",
				"Aplicar fungicidas de manera preventiva",
				"Mantener un espaciado adecuado entre plantas",
			},
			"hi": {
				"रोगमुक्त आलू के बीज का उपयोग करें",
				"फसल चक्र का अभ्यास करें",
				"संक्रमित पौधों को हटाएं और नष्ट करें",
				"निवारक रूप से फफूंदनाशक का प्रयोग करें",
				"उचित पौधों की दूरी बनाए रखें",
			},
		},
	},
	"Potato__late_blight": {
		names: map[string]string{
			"en": "Potato Late Blight",
			"es": "Tizón Tardío de la Papa",
			"hi": "आलू का पछेती झुलसा",
		},
		prevention: map[string][]string{
			"en": {
				"Plant resistant varieties",
				"Avoid overhead irrigation",
				"Remove infected plants immediately",
				"Apply fungicides before infection",
				"Harvest potatoes in dry weather",
			},
			"es": {
				"Plantar variedades resistentes",
				"Evitar el riego por aspersión",
				"Eliminar plantas infectadas inmediatamente",
				"Aplicar fungicidas antes de la infección",
				"Cosechar papas en clima seco",
			},
			"hi": {
				"प्रतिरोधी किस्मों को लगाएं",
				"ऊपरी सिंचाई से बचें",
				"संक्रमित पौधों को तुरंत हटा दें",
				"संक्रमण से पहले फफूंदनाशक लगाएं",
				"शुष्क मौसम में आलू की फसल काटें",
			},
		},
	},
	"Potato__healthy": {
		names: map[string]string{
			"en": "Healthy Potato Plant",
			"es": "Planta de Papa Sana",
			"hi": "स्वस्थ आलू का पौधा",
		},
		prevention: map[string][]string{
			"en": {
				"Continue good cultural practices",
				"Monitor for early signs of disease",
				"Maintain proper soil moisture",
				"Use balanced fertilization",
				"Practice regular crop rotation",
			},
			"es": {
				"Continuar con buenas prácticas de cultivo",
				"Monitorear por signos tempranos de enfermedad",
				"Mantener la humedad adecuada del suelo",
				"Usar fertilización equilibrada",
				"Practicar rotación regular de cultivos",
			},
			"hi": {
				"अच्छी कृषि पद्धतियां जारी रखें",
				"रोग के शुरुआती लक्षणों की निगरानी करें",
				"मिट्टी की उचित नमी बनाए रखें",
				"संतुलित उर्वरक का उपयोग करें",
				"नियमित फसल चक्र का अभ्यास करें",
			},
		},
	},
	"Tomato__bacterial_spot": {
		names: map[string]string{
			"en": "Tomato Bacterial Spot",
			"es": "Mancha Bacteriana del Tomate",
			"hi": "टमाटर का बैक्टीरियल स्पॉट",
		},
		prevention: map[string][]string{
			"en": {
				"Use disease-free seeds",
				"Avoid overhead watering",
				"Remove infected plants",
				"Practice crop rotation",
				"Apply copper-based fungicides",
			},
			"es": {
				"Usar semillas libres de enfermedades",
				"Evitar el riego por encima",
				"Eliminar plantas infectadas",
				"Practicar rotación de cultivos",
				"Aplicar fungicidas a base de cobre",
			},
			"hi": {
				"रोगमुक्त बीजों का उपयोग करें",
				"ऊपर से पानी देने से बचें",
				"संक्रमित पौधों को हटा दें",
				"फसल चक्र का अभ्यास करें",
				"तांबे-आधारित फफूंदनाशक लगाएं",
			},
		},
	},
	"Tomato__early_blight": {
		names: map[string]string{
			"en": "Tomato Early Blight",
			"es": "Tizón Temprano del Tomate",
			"hi": "टमाटर का अगेती झुलसा",
		},
		prevention: map[string][]string{
			"en": {
				"Remove infected leaves",
				"Improve air circulation",
				"Water at the base of plants",
				"Apply fungicides preventively",
				"Practice crop rotation",
			},
			"es": {
				"Eliminar hojas infectadas",
				"Mejorar la circulación de aire",
				"Regar en la base de las plantas",
				"Aplicar fungicidas preventivamente",
				"Practicar rotación de cultivos",
			},
			"hi": {
				"संक्रमित पत्तियों को हटा दें",
				"हवा का संचार बेहतर करें",
				"पौधों के आधार पर पानी दें",
				"निवारक रूप से फफूंदनाशक लगाएं",
				"फसल चक्र का अभ्यास करें",
			},
		},
	},
	"Tomato__late_blight": {
		names: map[string]string{
			"en": "Tomato Late Blight",
			"es": "Tizón Tardío del Tomate",
			"hi": "टमाटर का पछेती झुलसा",
		},
		prevention: map[string][]string{
			"en": {
				"Plant resistant varieties",
				"Avoid overhead watering",
				"Remove infected plants",
				"Apply fungicides before infection",
				"Maintain proper plant spacing",
			},
			"es": {
				"Plantar variedades resistentes",
				"Evitar el riego por encima",
				"Eliminar plantas infectadas",
				"Aplicar fungicidas antes de la infección",
				"Mantener un espaciado adecuado entre plantas",
			},
			"hi": {
				"प्रतिरोधी किस्मों को लगाएं",
				"ऊपर से पानी देने से बचें",
				"संक्रमित पौधों को हटा दें",
				"संक्रमण से पहले फफूंदनाशक लगाएं",
				"उचित पौधों की दूरी बनाए रखें",
			},
		},
	},
	"Tomato__leaf_mold": {
		names: map[string]string{
			"en": "Tomato Leaf Mold",
			"es": "Moho de la Hoja del Tomate",
			"hi": "टमाटर की पत्ती का फफूंद",
		},
		prevention: map[string][]string{
			"en": {
				"Improve air circulation",
				"Reduce humidity",
				"Water in the morning",
				"Remove infected leaves",
				"Use resistant varieties",
			},
			"es": {
				"Mejorar la circulación de aire",
				"Reducir la humedad",
				"Regar por la mañana",
				"Eliminar hojas infectadas",
				"Usar variedades resistentes",
			},
			"hi": {
				"हवा का संचार बेहतर करें",
				"नमी कम करें",
				"सुबह पानी दें",
				"संक्रमित पत्तियों को हटा दें",
				"प्रतिरोधी किस्मों का उपयोग करें",
			},
		},
	},
	"Tomato__mosaic_virus": {
		names: map[string]string{
			"en": "Tomato Mosaic Virus",
			"es": "Virus del Mosaico del Tomate",
			"hi": "टमाटर का मोज़ेक वायरस",
		},
		prevention: map[string][]string{
			"en": {
				"Use disease-free seeds",
				"Control aphid populations",
				"Remove infected plants",
				"Disinfect tools regularly",
				"Practice crop rotation",
			},
			"es": {
				"Usar semillas libres de enfermedades",
				"Controlar poblaciones de áfidos",
				"Eliminar plantas infectadas",
				"Desinfectar herramientas regularmente",
				"Practicar rotación de cultivos",
			},
			"hi": {
				"रोगमुक्त बीजों का उपयोग करें",
				"एफिड आबादी को नियंत्रित करें",
				"संक्रमित पौधों को हटा दें",
				"उपकरणों को नियमित रूप से कीटाणुरहित करें",
				"फसल चक्र का अभ्यास करें",
			},
		},
	},
	"Tomato__septoria_leaf_spot": {
		names: map[string]string{
			"en": "Tomato Septoria Leaf Spot",
			"es": "Mancha Foliar por Septoria en Tomate",
			"hi": "टमाटर का सेप्टोरिया लीफ स्पॉट",
		},
		prevention: map[string][]string{
			"en": {
				"Remove infected leaves",
				"Improve air circulation",
				"Water at the base of plants",
				"Apply fungicides preventively",
				"Practice crop rotation",
			},
			"es": {
				"Eliminar hojas infectadas",
				"Mejorar la circulación de aire",
				"Regar en la base de las plantas",
				"Aplicar fungicidas preventivamente",
				"Practicar rotación de cultivos",
			},
			"hi": {
				"संक्रमित पत्तियों को हटा दें",
				"हवा का संचार बेहतर करें",
				"पौधों के आधार पर पानी दें",
				"निवारक रूप से फफूंदनाशक लगाएं",
				"फसल चक्र का अभ्यास करें",
			},
		},
	},
	"Tomato__spider_mites_(two_spotted_spider_mite)": {
		names: map[string]string{
			"en": "Tomato Spider Mites",
			"es": "Ácaros en Tomate",
			"hi": "टमाटर का स्पाइडर माइट्स",
		},
		prevention: map[string][]string{
			"en": {
				"Maintain proper humidity",
				"Remove heavily infested leaves",
				"Use insecticidal soap",
				"Introduce natural predators",
				"Keep plants well-watered",
			},
			"es": {
				"Mantener una humedad adecuada",
				"Eliminar hojas muy infestadas",
				"Usar jabón insecticida",
				"Introducir depredadores naturales",
				"Mantener las plantas bien regadas",
			},
			"hi": {
				"उचित नमी बनाए रखें",
				"अत्यधिक संक्रमित पत्तियों को हटा दें",
				"कीटनाशक साबुन का उपयोग करें",
				"प्राकृतिक शिकारियों को परिचित कराएं",
				"पौधों को अच्छी तरह से पानी दें",
			},
		},
	},
	"Tomato__target_spot": {
		names: map[string]string{
			"en": "Tomato Target Spot",
			"es": "Mancha de Objetivo en Tomate",
			"hi": "टमाटर का टारगेट स्पॉट",
		},
		prevention: map[string][]string{
			"en": {
				"Remove infected leaves",
				"Improve air circulation",
				"Water at the base of plants",
				"Apply fungicides preventively",
				"Practice crop rotation",
			},
			"es": {
				"Eliminar hojas infectadas",
				"Mejorar la circulación de aire",
				"Regar en la base de las plantas",
				"Aplicar fungicidas preventivamente",
				"Practicar rotación de cultivos",
			},
			"hi": {
				"संक्रमित पत्तियों को हटा दें",
				"हवा का संचार बेहतर करें",
				"पौधों के आधार पर पानी दें",
				"निवारक रूप से फफूंदनाशक लगाएं",
				"फसल चक्र का अभ्यास करें",
			},
		},
	},
	"Tomato__yellow_leaf_curl_virus": {
		names: map[string]string{
			"en": "Tomato Yellow Leaf Curl Virus",
			"es": "Virus del Rizado Amarillo del Tomate",
			"hi": "टमाटर का पीला पत्ता कर्ल वायरस",
		},
		prevention: map[string][]string{
			"en": {
				"Use resistant varieties",
				"Control whitefly populations",
				"Remove infected plants",
				"Use reflective mulches",
				"Practice crop rotation",
			},
			"es": {
				"Usar variedades resistentes",
				"Controlar poblaciones de mosca blanca",
				"Eliminar plantas infectadas",
				"Usar mantillos reflectantes",
				"Practicar rotación de cultivos",
			},
			"hi": {
				"प्रतिरोधी किस्मों का उपयोग करें",
				"सफेदमक्खी की आबादी को नियंत्रित करें",
				"संक्रमित पौधों को हटा दें",
				"परावर्तक मल्च का उपयोग करें",
				"फसल चक्र का अभ्यास करें",
			},
		},
	},
	"Tomato__healthy": {
		names: map[string]string{
			"en": "Healthy Tomato Plant",
			"es": "Planta de Tomate Sana",
			"hi": "स्वस्थ टमाटर का पौधा",
		},
		prevention: map[string][]string{
			"en": {
				"Continue good cultural practices",
				"Monitor for early signs of disease",
				"Maintain proper soil moisture",
				"Use balanced fertilization",
				"Practice regular crop rotation",
			},
			"es": {
				"Continuar con buenas prácticas de cultivo",
				"Monitorear por signos tempranos de enfermedad",
				"Mantener la humedad adecuada del suelo",
				"Usar fertilización equilibrada",
				"Practicar rotación regular de cultivos",
			},
			"hi": {
				"अच्छी कृषि पद्धतियां जारी रखें",
				"रोग के शुरुआती लक्षणों की निगरानी करें",
				"मिट्टी की उचित नमी बनाए रखें",
				"संतुलित उर्वरक का उपयोग करें",
				"नियमित फसल चक्र का अभ्यास करें",
			},
		},
	},
}
