// Copyright 2025 Gabriel Dave
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "strings"

// CategoryGeneral is the fallback category assigned when a document does not
// fit any of the closed categories. Documents carrying it are still
// considered unclassified and will be revisited by later enrichment runs.
const CategoryGeneral = "General/Inversión"

// Categories is the closed vocabulary the metadata classifier chooses from.
var Categories = []string{
	"Psicología del Trading",
	"Análisis Técnico (Gráficos)",
	"Análisis Fundamental/Valoración",
	"Gestión de Riesgo y Posición",
	"Estrategia de Opciones/Futuros",
	"Introducción/Conceptos Básicos",
	"Automatización/Algorítmico",
	"Economía/Mercados Globales",
	"Biografía/Historias de Traders",
	CategoryGeneral,
}

// IsClassified reports whether a category value represents a real
// classification, as opposed to a missing or fallback value.
func IsClassified(category string) bool {
	c := strings.TrimSpace(category)
	if c == "" {
		return false
	}
	if strings.EqualFold(c, "general") {
		return false
	}
	return c != CategoryGeneral
}
