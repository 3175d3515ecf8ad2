package services

import (
	"fmt"
	"strings"

	"deepwork/report-generator/internal/models"
)

// reportTemplate is the fixed document skeleton the generator fills in. The
// double-brace placeholders are completed by the model; the insertion-point
// IDs are reserved for the assembler and must survive generation untouched.
const reportTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        @font-face {
            font-family: "IBMPlexSans";
            src: url("fonts/IBMPlexSans-Regular.ttf");
            font-weight: normal;
            font-style: normal;
        }
        @font-face {
            font-family: "IBMPlexSans";
            src: url("fonts/IBMPlexSans-Medium.ttf");
            font-weight: 500;
            font-style: normal;
        }
        @font-face {
            font-family: "IBMPlexSans";
            src: url("fonts/IBMPlexSans-Bold.ttf");
            font-weight: bold;
            font-style: normal;
        }
        body {
            font-family: "IBMPlexSans", sans-serif;
            line-height: 1.7;
            margin: 25px;
            color: #333;
            background-color: #ffffff;
            font-size: 10pt;
            position: relative;
            margin-bottom: 40px;
            width: 100vw;
        }
        h1 {
            color: #2c3e50;
            text-align: center;
            border-bottom: 2px solid #3498db;
            padding-bottom: 10px;
            font-size: 24px;
            font-weight: bold;
        }
        h2 {
            color: #34495e;
            margin-top: 35px;
            border-bottom: 1px solid #bdc3c7;
            padding-bottom: 8px;
            font-size: 20px;
            font-weight: 500;
        }
        h3 {
            color: #7f8c8d;
            font-size: 16px;
            margin-bottom: 15px;
            font-weight: 500;
        }
        .section { margin-bottom: 30px; }
        #pie-chart-placeholder { width: 100%; height: auto; margin: 20px auto; text-align: center; }

        .watermark-image-container {
            position: fixed;
            top: 50%;
            left: 50%;
            transform: translate(-50%, -50%);
            z-index: -1;
            pointer-events: none;
            opacity: 0.05;
            width: 70%;
            max-width: 600px;
            height: auto;
            text-align: center;
        }
        .watermark-image-container img {
            width: 100%;
            height: auto;
            display: block;
            margin: 0 auto;
        }

        @page {
            margin: 70px 12.5px 70px 12.5px;
            @top-left {
                content: element(header_logo);
                vertical-align: top;
            }
            @top-right {
                content: element(header_uygunluk);
                vertical-align: top;
            }
            @bottom-center {
                content: element(footer_content);
                vertical-align: bottom;
                padding-bottom: 10px;
            }
        }

        .page-footer {
            display: block;
            position: running(footer_content);
            width: 100%;
            background-color: #ffffff;
            padding: 10px 10px;
            text-align: center;
            font-size: 8px;
            color: #555;
            box-sizing: border-box;
        }
        .footer-divider {
            border-top: 0.5px solid #ccc;
            margin: 0 auto 5px auto;
            width: 90%;
        }
        .footer-company-name {
            font-weight: bold;
            margin-bottom: 2px;
        }
        .footer-contact-info {
            font-size: 7px;
            line-height: 1.2;
            white-space: nowrap;
            display: flex;
            justify-content: center;
            gap: 10px;
        }

        .page-header-logo {
            margin-top: 15px;
            margin-left: 15px;
            position: running(header_logo);
            text-align: left;
        }
        .page-header-logo img {
            width: 40px;
            height: auto;
            display: inline-block;
        }

        .page-header-uygunluk {
            margin-top: 15px;
            margin-right: 15px;
            position: running(header_uygunluk);
            text-align: right;
            font-size: 12px;
            color: #2c3e50;
            font-weight: bold;
            line-height: 1.2;
            min-width: 180px;
            background: linear-gradient(135deg, #f8f9fa 0%, #e9ecef 100%);
            border: 2px solid #27ae60;
            border-radius: 8px;
            padding: 8px 12px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }

        .page-header-uygunluk .percentage {
            font-size: 16px;
            color: #27ae60;
            font-weight: bold;
            display: inline-block;
            margin-left: 5px;
        }
    </style>
</head>
<body>
    <div class="page-header-logo" id="header_logo">
        <img src="{{logo_src}}" alt="Logo" />
    </div>

    <div class="page-header-uygunluk" id="header_uygunluk">
        Pozisyona Uygunluk: <span class="percentage">%__SCORE__</span>
    </div>

    <div class="page-footer">
        <div class="footer-divider"></div>
        <div class="footer-company-name">DeepWork Bilişim Teknolojileri A.Ş.</div>
        <div class="footer-contact-info">
            <span>info@hrai.com.tr</span>
            <span>-</span>
            <span>İstanbul Medeniyet Üniversitesi Kuzey Kampüsü Medeniyet Teknopark Kuluçka Merkezi Üsküdar/İstanbul</span>
            <span>-</span>
            <span>+90 553 808 32 77</span>
        </div>
    </div>

    <div class="watermark-image-container" id="watermark-placeholder">
    </div>

    <h1>__PERSON_NAME__ - Mülakat Değerlendirme Raporu</h1>

    <div class="section">
        <h2>1) Genel Bakış</h2>
        <p>{{genel_bakis_icerik}}</p>
    </div>

    <div class="section">
        <h2>2) Analiz</h2>
        <h3>Duygu Analizi:</h3>
        <div id="bar-chart-placeholder"></div> <p>{{duygu_analizi_yorumu}}</p>

        <h3>Dikkat Analizi</h3>
        <p>{{dikkat_analizi_yorumu}}</p>
    </div>

    <div class="section">
        <h2>3) Genel Değerlendirme</h2>
        <p>{{genel_degerlendirme_icerik}}</p>
    </div>

    <div class="section">
        <h2>4) Sorular ve Cevaplar</h2>
        __QA_SECTION__
    </div>

    <div class="section">
        <h2>5) Sonuçlar ve Öneriler</h2>
        <p>{{sonuclar_oneriler_icerik}}</p>
    </div>

    {{uygunluk_degerlendirmesi_bolumu}}
</body>
</html>`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// FormatQASection renders the session's question/answer pair as a report
// fragment embedded directly in the template.
func (pb *PromptBuilder) FormatQASection(question, answer string) string {
	return fmt.Sprintf(`
        <div class="qa-item" style="margin-bottom: 15px; padding: 12px; border: 1px solid #e0e0e0; border-radius: 8px;">
            <p style="font-weight: bold; color: #34495e;">Soru: %s</p>
            <p style="color: #555; margin-top: 5px;">Cevap: %s</p>
        </div>
`, question, answer)
}

// BuildReportPrompt constructs the instruction payload for the generator:
// session data, per-field writing instructions matching the report kind, and
// the fixed template to fill. Generated narrative text is Turkish.
func (pb *PromptBuilder) BuildReportPrompt(rec *models.SessionRecord) string {
	qaSection := pb.FormatQASection(rec.Question, rec.Answer)

	template := strings.NewReplacer(
		"__PERSON_NAME__", rec.PersonName,
		"__SCORE__", fmt.Sprintf("%g", rec.Score),
		"__QA_SECTION__", qaSection,
	).Replace(reportTemplate)

	if rec.Kind == models.KindCustomer {
		return pb.customerInstructions(rec) + template
	}
	return pb.candidateInstructions(rec) + template
}

func (pb *PromptBuilder) emotionSummary(rec *models.SessionRecord) string {
	parts := make([]string, 0, len(models.EmotionKeys))
	for _, key := range models.EmotionKeys {
		v, _ := rec.Emotions.Value(key)
		parts = append(parts, fmt.Sprintf("%s %g", key.Label(), v))
	}
	return strings.Join(parts, ", ")
}

func (pb *PromptBuilder) candidateInstructions(rec *models.SessionRecord) string {
	return fmt.Sprintf(`
Lütfen aşağıdaki HTML şablonunu verilen mülakat verilerine göre doldurarak eksiksiz bir HTML raporu oluştur.
Veriler:
- Aday Adı: %s
- Mülakat Adı: %s
- LLM Skoru: %g, Ortalama LLM Skoru: %g
- Duygu Analizi (%%): %s
- Dikkat Analizi: Ekran Dışı Süre %g sn, Ekran Dışı Bakış Sayısı %d, Ortalama Ekran Dışı Süre %g sn, Ortalama Ekran Dışı Bakış Sayısı %d

Doldurulacak Alanlar İçin Talimatlar:
1.  {{genel_bakis_icerik}}: Adayın genel performansını, iletişim becerilerini ve mülakatın genel seyrini özetleyen, en az iki paragraftan oluşan detaylı bir giriş yaz.
2.  {{duygu_analizi_yorumu}}: Yukarıda verilen sayısal duygu analizi verilerini yorumla. Hangi duyguların baskın olduğunu ve bunun mülakat bağlamında ne anlama gelebileceğini analiz et. Bu yorum en az iki detaylı paragraf olmalıdır. Giriş cümlesi tam olarak şu olmalı: "Görüntü ve ses analiz edilerek adayın duygu analizi yapılmıştır."
3.  {{dikkat_analizi_yorumu}}: Ekran dışı süre ve bakış sayısı verilerini yorumla. Bu verilerin adayın dikkat seviyesi veya odaklanması hakkında ne gibi ipuçları verdiğini açıkla. Bu yorum en az bir detaylı paragraf olmalıdır.
4.  {{genel_degerlendirme_icerik}}: Adayın verdiği cevapları, genel tavrını ve analiz sonuçlarını birleştirerek kapsamlı bir değerlendirme yap. Adayın güçlü ve gelişime açık yönlerini belirt. Bu bölüm en az üç paragraf olmalıdır.
5.  {{sonuclar_oneriler_icerik}}: Bu bölümü **sadece İnsan Kaynakları profesyonellerine yönelik** olarak yaz. Adayın pozisyona uygunluğu hakkında net bir sonuca var. İşe alım kararı için somut önerilerde bulun. Adaya yönelik bir dil kullanma. Bu bölüm en az iki paragraf olmalıdır.
6.  {{uygunluk_degerlendirmesi_bolumu}}: Adayın pozisyona uygunluk yüzdesini (0-100 arası bir tam sayı) ve bu yüzdeyi destekleyen kısa bir açıklamayı HTML formatında oluştur. Yüzdeyi %g değerini dikkate alarak belirle. Örnek format:
    <div class="section">
        <h2>6) Pozisyona Uygunluk Değerlendirmesi</h2>
        <p style="font-size: 18px; font-weight: bold; color: #27ae60;">Pozisyona Uygunluk: %%85</p>
        <p>Adayın genel mülakat performansı, teknik bilgi ve iletişim becerileri, pozisyonun gerektirdiği yetkinliklerle yüksek düzeyde örtüşmektedir.</p>
    </div>
    Açıklama 1-2 paragraf uzunluğunda olmalıdır.

Önemli Kurallar:
- Üretilen tüm metin **sadece Türkçe** olmalıdır.
- Raporun tonu profesyonel, resmi ve veri odaklı olmalıdır.
- Kullanıcıya yönelik hiçbir not, açıklama veya meta-yorum ekleme.
- Sadece ve sadece aşağıdaki HTML şablonunu doldurarak yanıt ver. Başka hiçbir metin ekleme.

İşte doldurman gereken şablon:
`,
		rec.PersonName, rec.SessionName, rec.Score, rec.AvgScore,
		pb.emotionSummary(rec),
		rec.OffScreenSeconds, rec.OffScreenCount, rec.AvgOffScreenSeconds, rec.AvgOffScreenCount,
		rec.Score)
}

func (pb *PromptBuilder) customerInstructions(rec *models.SessionRecord) string {
	return fmt.Sprintf(`
Lütfen aşağıdaki HTML şablonunu verilen görüşme verilerine göre doldurarak eksiksiz bir HTML raporu oluştur.
Veriler:
- Müşteri Adı: %s
- Görüşme Adı: %s
- Duygu Analizi (%%): %s
- Dikkat Analizi: Ekran Dışı Süre %g sn, Ekran Dışı Bakış Sayısı %d, Ortalama Ekran Dışı Süre %g sn, Ortalama Ekran Dışı Bakış Sayısı %d

Doldurulacak Alanlar İçin Talimatlar:
1.  {{genel_bakis_icerik}}: Müşterinin genel performansını, iletişim becerilerini ve görüşmenin genel seyrini özetleyen, en az iki paragraftan oluşan detaylı bir giriş yaz.
2.  {{duygu_analizi_yorumu}}: Yukarıda verilen sayısal duygu analizi verilerini yorumla. Hangi duyguların baskın olduğunu ve bunun görüşme bağlamında ne anlama gelebileceğini analiz et. Bu yorum en az iki detaylı paragraf olmalıdır. Giriş cümlesi tam olarak şu olmalı: "Görüntü ve ses analiz edilerek kişinin duygu analizi yapılmıştır."
3.  {{dikkat_analizi_yorumu}}: Ekran dışı süre ve bakış sayısı verilerini yorumla. Bu verilerin müşterinin dikkat seviyesi veya odaklanması hakkında ne gibi ipuçları verdiğini açıkla. Bu yorum en az bir detaylı paragraf olmalıdır.
4.  {{genel_degerlendirme_icerik}}: Müşterinin verdiği cevapları, genel tavrını ve analiz sonuçlarını birleştirerek kapsamlı bir değerlendirme yap. Müşterinin güçlü ve gelişime açık yönlerini belirt. Bu bölüm en az üç paragraf olmalıdır.
5.  {{sonuclar_oneriler_icerik}}: Bu bölümü müşteri hakkında genel bir değerlendirme olarak yaz. 1 paragraf kadar olmalı.

Önemli Kurallar:
- Üretilen tüm metin **sadece Türkçe** olmalıdır.
- Raporun tonu profesyonel, resmi ve veri odaklı olmalıdır.
- Kullanıcıya yönelik hiçbir not, açıklama veya meta-yorum ekleme.
- Sadece ve sadece aşağıdaki HTML şablonunu doldurarak yanıt ver. Başka hiçbir metin ekleme.

İşte doldurman gereken şablon:
`,
		rec.PersonName, rec.SessionName,
		pb.emotionSummary(rec),
		rec.OffScreenSeconds, rec.OffScreenCount, rec.AvgOffScreenSeconds, rec.AvgOffScreenCount)
}
