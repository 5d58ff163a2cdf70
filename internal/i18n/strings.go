package i18n

var tables = map[Lang]map[string]string{
	English: {
		"app.title":        "Archaeology Assistant",
		"app.subtitle":     "Restoring the past with AI",
		"loading":          "Preparing the excavation site...",
		"connect.desc":     "Connect a Gemini API key with billing enabled to restore artifacts, translate inscriptions and complete mosaics.",
		"connect.button":   "Connect API Key",
		"connect.field":    "API key",
		"billing.docs":     "About Gemini API billing",
		"apikey.button":    "API Key",
		"lang.toggle":      "TR 🇹🇷",
		"footer.rights":    "Archaeology Assistant. All rights reserved.",
		"footer.tagline":   "Every fragment tells a story.",
		"upload.image":     "Upload an image",
		"upload.format":    "PNG, JPG or GIF",
		"upload.change":    "Choose another file to change",
		"upload.url":       "or load from URL",
		"upload.submit":    "Load",
		"spinner":          "Consulting the ancients...",
		"error.permission": "Permission denied. Your API key may not have access to this model. Please select a key from a billing-enabled project.",
		"error.upload":     "The selected file could not be read as an image.",
		"change.key":       "Change API Key",
		"try.again":        "Try Again",
		"download":         "Download",
		"drag.slider":      "Drag the slider to compare",

		"nav.restoration":      "Restoration",
		"nav.restoration.desc": "Repair damaged artifacts",
		"nav.translation":      "Translation",
		"nav.translation.desc": "Read ancient inscriptions",
		"nav.mosaic":           "Mosaic",
		"nav.mosaic.desc":      "Complete missing tesserae",
		"nav.vase":             "Vase",
		"nav.vase.desc":        "Reconstruct pottery",
		"nav.frigated":         "Frigated",
		"nav.frigated.desc":    "Protect your findings",

		"restoration.title":    "Artifact Restoration",
		"restoration.subtitle": "Bring weathered statues, reliefs and frescoes back to life",
		"restoration.label":    "Photo of the damaged artifact",
		"restoration.button":   "Restore",
		"restoration.error":    "Restoration failed. Please try again.",
		"restoration.result":   "Restored Artifact",
		"restoration.before":   "ORIGINAL",
		"restoration.after":    "RESTORED",

		"translation.title":    "Ancient Text Translation",
		"translation.subtitle": "Transcribe and translate inscriptions, tablets and papyri",
		"translation.label":    "Photo of the inscription",
		"translation.target":   "Translate into",
		"translation.button":   "Translate",
		"translation.error":    "Translation failed. Please try again.",
		"translation.result":   "Translation",

		"mosaic.title":               "Mosaic Completion",
		"mosaic.subtitle":            "Fill in the lost tesserae of a mosaic floor",
		"mosaic.label":               "Photo of the mosaic fragment",
		"mosaic.context.label":       "Context (optional)",
		"mosaic.context.placeholder": "e.g. Roman villa floor, 2nd century AD, hunting scene",
		"mosaic.context.hint":        "Period, site or motif help the reconstruction.",
		"mosaic.button":              "Complete Mosaic",
		"mosaic.error":               "Mosaic completion failed. Please try again.",
		"mosaic.result":              "Completed Mosaic",
		"mosaic.before":              "FRAGMENT",
		"mosaic.after":               "COMPLETED",

		"vase.title":    "Vase Analysis",
		"vase.subtitle": "Reconstruct broken pottery and its painted decoration",
		"vase.label":    "Photo of the vase or sherds",
		"vase.button":   "Analyze Vase",
		"vase.error":    "Vase analysis failed. Please try again.",
		"vase.result":   "Reconstructed Vase",
		"vase.before":   "FOUND",
		"vase.after":    "RECONSTRUCTED",

		"frigated.title":    "Frigated",
		"frigated.subtitle": "Secure documentation for archaeological findings",
		"frigated.content":  "Register and protect your discoveries with tamper-evident records before you publish them.",
		"frigated.button":   "Open Frigated",
	},
	Turkish: {
		"app.title":        "Arkeoloji Asistanı",
		"app.subtitle":     "Geçmişi yapay zekâ ile onarıyoruz",
		"loading":          "Kazı alanı hazırlanıyor...",
		"connect.desc":     "Eserleri onarmak, yazıtları çevirmek ve mozaikleri tamamlamak için faturalandırması açık bir Gemini API anahtarı bağlayın.",
		"connect.button":   "API Anahtarı Bağla",
		"connect.field":    "API anahtarı",
		"billing.docs":     "Gemini API faturalandırması hakkında",
		"apikey.button":    "API Anahtarı",
		"lang.toggle":      "EN 🇬🇧",
		"footer.rights":    "Arkeoloji Asistanı. Tüm hakları saklıdır.",
		"footer.tagline":   "Her parça bir hikâye anlatır.",
		"upload.image":     "Bir görsel yükleyin",
		"upload.format":    "PNG, JPG veya GIF",
		"upload.change":    "Değiştirmek için başka bir dosya seçin",
		"upload.url":       "veya bağlantıdan yükleyin",
		"upload.submit":    "Yükle",
		"spinner":          "Kadimlere danışılıyor...",
		"error.permission": "Erişim reddedildi. API anahtarınızın bu modele erişimi olmayabilir. Lütfen faturalandırması açık bir projeden anahtar seçin.",
		"error.upload":     "Seçilen dosya görsel olarak okunamadı.",
		"change.key":       "API Anahtarını Değiştir",
		"try.again":        "Tekrar Dene",
		"download":         "İndir",
		"drag.slider":      "Karşılaştırmak için kaydırıcıyı sürükleyin",

		"nav.restoration":      "Restorasyon",
		"nav.restoration.desc": "Hasarlı eserleri onarın",
		"nav.translation":      "Çeviri",
		"nav.translation.desc": "Antik yazıtları okuyun",
		"nav.mosaic":           "Mozaik",
		"nav.mosaic.desc":      "Eksik tesseraları tamamlayın",
		"nav.vase":             "Vazo",
		"nav.vase.desc":        "Seramikleri yeniden kurun",
		"nav.frigated":         "Frigated",
		"nav.frigated.desc":    "Buluntularınızı koruyun",

		"restoration.title":    "Eser Restorasyonu",
		"restoration.subtitle": "Aşınmış heykel, kabartma ve freskleri yeniden canlandırın",
		"restoration.label":    "Hasarlı eserin fotoğrafı",
		"restoration.button":   "Onar",
		"restoration.error":    "Restorasyon başarısız oldu. Lütfen tekrar deneyin.",
		"restoration.result":   "Onarılmış Eser",
		"restoration.before":   "ORİJİNAL",
		"restoration.after":    "ONARILMIŞ",

		"translation.title":    "Antik Metin Çevirisi",
		"translation.subtitle": "Yazıt, tablet ve papirüsleri okuyup çevirin",
		"translation.label":    "Yazıtın fotoğrafı",
		"translation.target":   "Çeviri dili",
		"translation.button":   "Çevir",
		"translation.error":    "Çeviri başarısız oldu. Lütfen tekrar deneyin.",
		"translation.result":   "Çeviri",

		"mosaic.title":               "Mozaik Tamamlama",
		"mosaic.subtitle":            "Bir mozaik tabanın kayıp tesseralarını tamamlayın",
		"mosaic.label":               "Mozaik parçasının fotoğrafı",
		"mosaic.context.label":       "Bağlam (isteğe bağlı)",
		"mosaic.context.placeholder": "ör. Roma villası tabanı, MS 2. yüzyıl, av sahnesi",
		"mosaic.context.hint":        "Dönem, yer veya motif bilgisi yeniden yapıma yardımcı olur.",
		"mosaic.button":              "Mozaiği Tamamla",
		"mosaic.error":               "Mozaik tamamlama başarısız oldu. Lütfen tekrar deneyin.",
		"mosaic.result":              "Tamamlanmış Mozaik",
		"mosaic.before":              "PARÇA",
		"mosaic.after":               "TAMAMLANMIŞ",

		"vase.title":    "Vazo Analizi",
		"vase.subtitle": "Kırık seramikleri ve boyalı bezemelerini yeniden kurun",
		"vase.label":    "Vazonun veya parçaların fotoğrafı",
		"vase.button":   "Vazoyu Analiz Et",
		"vase.error":    "Vazo analizi başarısız oldu. Lütfen tekrar deneyin.",
		"vase.result":   "Yeniden Kurulmuş Vazo",
		"vase.before":   "BULUNAN",
		"vase.after":    "YENİDEN KURULMUŞ",

		"frigated.title":    "Frigated",
		"frigated.subtitle": "Arkeolojik buluntular için güvenli belgeleme",
		"frigated.content":  "Keşiflerinizi yayımlamadan önce değiştirilemez kayıtlarla kaydedin ve koruyun.",
		"frigated.button":   "Frigated'ı Aç",
	},
}
