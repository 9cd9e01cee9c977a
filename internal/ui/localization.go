package ui

import "github.com/ytget/s3-upload-tool/internal/model"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyUpload            = "upload"
	KeyDownload          = "download"
	KeyStart             = "start"
	KeyPause             = "pause"
	KeyResume            = "resume"
	KeyRetry             = "retry"
	KeyCancel            = "cancel"
	KeyRemove            = "remove"
	KeyReveal            = "reveal"
	KeyOpen              = "open"
	KeyAutoReveal        = "auto_reveal"
	KeyStartAll          = "start_all"
	KeyPauseAll          = "pause_all"
	KeyCancelAll         = "cancel_all"
	KeyRetryFailed       = "retry_failed"
	KeyClearCompleted    = "clear_completed"
	KeyClearFailed       = "clear_failed"
	KeyEnterTarget       = "enter_target"
	KeyInvalidTarget     = "invalid_target"
	KeyTasksAdded        = "tasks_added"
	KeyQueueSummary      = "queue_summary"
	KeyFilterAll         = "filter_all"
	KeyDownloadDirectory = "download_directory"
	KeyMaxConcurrent     = "max_concurrent"
	KeyMaxRetries        = "max_retries"
	KeyMode              = "mode"
	KeyResumable         = "resumable"
	KeyRetryOnFailure    = "retry_on_failure"
	KeyOverwrite         = "overwrite"
	KeyCreateDirectories = "create_directories"
	KeyRegion            = "region"
	KeyEndpoint          = "endpoint"
	KeyPathStyle         = "path_style"
	KeySave              = "save"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyErrorOpeningFile  = "error_opening_file"
)

// statusKey returns the text key of a task status
func statusKey(status model.TaskStatus) string {
	return "status_" + status.String()
}

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language; unknown languages are ignored
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key, falling back to English
// and then to the key itself
func (l *Localization) GetText(key string) string {
	if text, found := l.texts[l.currentLanguage][key]; found {
		return text
	}
	if text, found := l.texts["en"][key]; found {
		return text
	}
	return key
}

// StatusText returns the localized name of a task status
func (l *Localization) StatusText(status model.TaskStatus) string {
	return l.GetText(statusKey(status))
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "S3 Transfers",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyUpload:            "Upload…",
		KeyDownload:          "Download",
		KeyStart:             "Start",
		KeyPause:             "Pause",
		KeyResume:            "Resume",
		KeyRetry:             "Retry",
		KeyCancel:            "Cancel",
		KeyRemove:            "Remove",
		KeyReveal:            "Show",
		KeyOpen:              "Open",
		KeyAutoReveal:        "Show downloads when finished",
		KeyStartAll:          "Start all",
		KeyPauseAll:          "Pause all",
		KeyCancelAll:         "Cancel all",
		KeyRetryFailed:       "Retry failed",
		KeyClearCompleted:    "Clear completed",
		KeyClearFailed:       "Clear failed",
		KeyEnterTarget:       "s3://bucket/prefix/ for uploads, s3://bucket/key for downloads",
		KeyInvalidTarget:     "Enter an address like s3://bucket/key",
		KeyTasksAdded:        "Added to queue",
		KeyQueueSummary:      "%d of %d running · %d waiting",
		KeyFilterAll:         "All",
		KeyDownloadDirectory: "Download directory",
		KeyMaxConcurrent:     "Concurrent transfers",
		KeyMaxRetries:        "Retries per task",
		KeyMode:              "Transfer mode",
		KeyResumable:         "Resume large transfers",
		KeyRetryOnFailure:    "Retry failed transfers automatically",
		KeyOverwrite:         "Overwrite existing files",
		KeyCreateDirectories: "Create missing directories",
		KeyRegion:            "Region",
		KeyEndpoint:          "Endpoint",
		KeyPathStyle:         "Path-style addressing",
		KeySave:              "Save",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved",
		KeyErrorOpeningFile:  "Error opening file",

		statusKey(model.TaskStatusPending):    "Waiting",
		statusKey(model.TaskStatusInProgress): "Transferring",
		statusKey(model.TaskStatusPaused):     "Paused",
		statusKey(model.TaskStatusCompleted):  "Done",
		statusKey(model.TaskStatusFailed):     "Failed",
		statusKey(model.TaskStatusCancelled):  "Cancelled",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "Передача S3",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyUpload:            "Загрузить…",
		KeyDownload:          "Скачать",
		KeyStart:             "Старт",
		KeyPause:             "Пауза",
		KeyResume:            "Продолжить",
		KeyRetry:             "Повторить",
		KeyCancel:            "Отмена",
		KeyRemove:            "Удалить",
		KeyReveal:            "Показать",
		KeyOpen:              "Открыть",
		KeyAutoReveal:        "Показывать готовые загрузки",
		KeyStartAll:          "Запустить все",
		KeyPauseAll:          "Приостановить все",
		KeyCancelAll:         "Отменить все",
		KeyRetryFailed:       "Повторить ошибки",
		KeyClearCompleted:    "Убрать готовые",
		KeyClearFailed:       "Убрать ошибки",
		KeyEnterTarget:       "s3://bucket/prefix/ для загрузки, s3://bucket/key для скачивания",
		KeyInvalidTarget:     "Введите адрес вида s3://bucket/key",
		KeyTasksAdded:        "Добавлено в очередь",
		KeyQueueSummary:      "%d из %d активно · %d в очереди",
		KeyFilterAll:         "Все",
		KeyDownloadDirectory: "Папка загрузки",
		KeyMaxConcurrent:     "Одновременных передач",
		KeyMaxRetries:        "Повторов на задачу",
		KeyMode:              "Режим передачи",
		KeyResumable:         "Докачка больших файлов",
		KeyRetryOnFailure:    "Повторять ошибки автоматически",
		KeyOverwrite:         "Перезаписывать файлы",
		KeyCreateDirectories: "Создавать папки",
		KeyRegion:            "Регион",
		KeyEndpoint:          "Адрес сервера",
		KeyPathStyle:         "Адресация через путь",
		KeySave:              "Сохранить",
		KeyBrowse:            "Обзор",
		KeySettingsSaved:     "Настройки сохранены",
		KeyErrorOpeningFile:  "Ошибка открытия файла",

		statusKey(model.TaskStatusPending):    "Ожидает",
		statusKey(model.TaskStatusInProgress): "Передача",
		statusKey(model.TaskStatusPaused):     "Пауза",
		statusKey(model.TaskStatusCompleted):  "Готово",
		statusKey(model.TaskStatusFailed):     "Ошибка",
		statusKey(model.TaskStatusCancelled):  "Отменено",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "Transferências S3",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyUpload:            "Enviar…",
		KeyDownload:          "Baixar",
		KeyStart:             "Iniciar",
		KeyPause:             "Pausar",
		KeyResume:            "Continuar",
		KeyRetry:             "Repetir",
		KeyCancel:            "Cancelar",
		KeyRemove:            "Remover",
		KeyReveal:            "Mostrar",
		KeyOpen:              "Abrir",
		KeyAutoReveal:        "Mostrar downloads concluídos",
		KeyStartAll:          "Iniciar todos",
		KeyPauseAll:          "Pausar todos",
		KeyCancelAll:         "Cancelar todos",
		KeyRetryFailed:       "Repetir falhas",
		KeyClearCompleted:    "Limpar concluídos",
		KeyClearFailed:       "Limpar falhas",
		KeyEnterTarget:       "s3://bucket/prefixo/ para envios, s3://bucket/chave para downloads",
		KeyInvalidTarget:     "Digite um endereço como s3://bucket/chave",
		KeyTasksAdded:        "Adicionado à fila",
		KeyQueueSummary:      "%d de %d ativos · %d aguardando",
		KeyFilterAll:         "Todos",
		KeyDownloadDirectory: "Diretório de download",
		KeyMaxConcurrent:     "Transferências simultâneas",
		KeyMaxRetries:        "Tentativas por tarefa",
		KeyMode:              "Modo de transferência",
		KeyResumable:         "Retomar arquivos grandes",
		KeyRetryOnFailure:    "Repetir falhas automaticamente",
		KeyOverwrite:         "Sobrescrever arquivos",
		KeyCreateDirectories: "Criar diretórios",
		KeyRegion:            "Região",
		KeyEndpoint:          "Endpoint",
		KeyPathStyle:         "Endereçamento por caminho",
		KeySave:              "Salvar",
		KeyBrowse:            "Navegar",
		KeySettingsSaved:     "Configurações salvas",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",

		statusKey(model.TaskStatusPending):    "Aguardando",
		statusKey(model.TaskStatusInProgress): "Transferindo",
		statusKey(model.TaskStatusPaused):     "Pausado",
		statusKey(model.TaskStatusCompleted):  "Concluído",
		statusKey(model.TaskStatusFailed):     "Falhou",
		statusKey(model.TaskStatusCancelled):  "Cancelado",
	}
}
