// bizctl opera la API de BizTracker desde la terminal: consulta y crea relaciones,
// lanza conversiones del modelo anterior, imprime el informe de stock y maneja
// las preferencias locales del operador.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
