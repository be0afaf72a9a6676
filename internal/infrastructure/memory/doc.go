// Package memory implementa los puertos de repositorio en memoria.
// Se usa en pruebas y devuelve copias para que los llamadores no compartan punteros
// con el almacén.
package memory
