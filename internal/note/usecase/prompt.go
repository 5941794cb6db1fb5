package usecase

import "fmt"

// systemPrompt instructs the extraction model to return strict JSON with
// summary, tags and action_items.
const systemPrompt = `Ты - ассистент для обработки заметок в системе Personal Knowledge Management (Obsidian).
Твоя задача - проанализировать текст и извлечь структурированную информацию.

ВАЖНЫЕ ПРАВИЛА:
1. Извлекай только то, что явно присутствует в тексте
2. НЕ добавляй информацию от себя
3. Теги должны быть релевантны содержанию
4. Резюме должно быть информативным, но кратким
5. Задачи - только конкретные действия, которые упомянуты в тексте

ИЗВЛЕКАЙ:
1. ТЕГИ (tags):
   - 3-5 релевантных тегов
   - Английский язык, lowercase
   - Формат: kebab-case (через дефис)
   - От общих к конкретным
   - Примеры: project-idea, meeting, task, shopping, health

2. РЕЗЮМЕ (summary):
   - Краткое описание (1-2 предложения)
   - Максимум 200 символов
   - На том же языке, что и текст
   - Фокус на ключевых идеях

3. ЗАДАЧИ (action_items):
   - Список конкретных действий
   - Только то, что упомянуто в тексте
   - Формат: глагол + объект + контекст
   - Если задач нет - пустой массив

ФОРМАТ ОТВЕТА (строго JSON):
{
  "summary": "Краткое описание содержания",
  "tags": ["tag1", "tag2", "tag3"],
  "action_items": ["Задача 1", "Задача 2"]
}

НЕ добавляй никакого текста кроме JSON!`

var languageNames = map[string]string{
	"ru": "русский",
	"en": "английский",
	"uk": "украинский",
	"de": "немецкий",
	"fr": "французский",
	"es": "испанский",
	"it": "итальянский",
	"pt": "португальский",
}

// buildUserPrompt formats the note text into the extraction request,
// pinning the summary language to the note's language.
func buildUserPrompt(text, language string) string {
	langName, ok := languageNames[language]
	if !ok {
		langName = "исходный язык текста"
	}

	return fmt.Sprintf(`Проанализируй следующий текст и извлеки структурированную информацию:

ТЕКСТ:
%s

ТРЕБОВАНИЯ:
- Язык резюме: %s
- Теги: английский, lowercase, kebab-case
- Задачи: только явно упомянутые действия

Ответь в формате JSON.`, text, langName)
}
